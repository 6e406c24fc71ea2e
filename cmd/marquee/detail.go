package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/config"
	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
	"github.com/vadimtrunov/Marquee/internal/presenter"
)

func newDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "detail [tmdb id]",
		Short:   "Show details and credits for one movie",
		Example: `  marquee detail 238`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return runDetail(id)
		},
	}
}

// parseMovieID accepts positive integer TMDb ids only.
func parseMovieID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q: must be a positive integer", raw)
	}
	return id, nil
}

func runDetail(id int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLogger(cfg.App.LogLevel)
	state := newCatalogState(cfg, logger)

	ctx, cancel := signalContext()
	defer cancel()

	p := tea.NewProgram(newDetailModel(ctx, state, genre.Default(), id))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run detail: %w", err)
	}

	dm, ok := m.(detailModel)
	if !ok {
		return fmt.Errorf("unexpected model type from tea program")
	}
	return dm.err
}

// detailResolvedMsg is sent once both detail fetches have settled.
type detailResolvedMsg struct {
	id  int
	err error
}

type detailModel struct {
	ctx     context.Context
	state   *catalog.State
	genres  *genre.Table
	id      int
	spinner spinner.Model
	view    presenter.DetailView
	err     error
	done    bool
}

func newDetailModel(ctx context.Context, state *catalog.State, genres *genre.Table, id int) detailModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return detailModel{
		ctx:     ctx,
		state:   state,
		genres:  genres,
		id:      id,
		spinner: s,
	}
}

func (m detailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, resolveDetail(m.ctx, m.state, m.id))
}

func (m detailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case detailResolvedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.done = true
		m.view = presenter.BuildDetail(m.state.Snapshot(), m.genres)
		switch {
		case msg.err != nil:
			m.err = msg.err
		case errors.Is(m.state.DetailErr(), tmdb.ErrNotFound):
			m.err = fmt.Errorf("movie %d not found", m.id)
		case m.state.DetailErr() != nil:
			m.err = fmt.Errorf("fetch movie %d: %w", m.id, m.state.DetailErr())
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m detailModel) View() string {
	if m.done {
		if m.err != nil {
			return styleError.Render("Error: "+m.err.Error()) + "\n"
		}
		return renderDetail(m.view)
	}
	return m.spinner.View() + styleDim.Render(" Loading movie...") + "\n"
}

// resolveDetail starts a selection and waits for it to settle.
func resolveDetail(ctx context.Context, state *catalog.State, id int) tea.Cmd {
	res := state.SelectDetail(ctx, id)
	return func() tea.Msg {
		return detailResolvedMsg{id: id, err: res.Wait(ctx)}
	}
}
