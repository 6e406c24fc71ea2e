package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/config"
	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/presenter"
)

// newBrowseCmd returns the "browse" subcommand for the interactive catalog.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: "Browse the top rated catalog in a terminal UI.\n" +
			"Enter opens a movie, Esc goes back, g jumps to a TMDb id, r reloads, q quits.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBrowse()
		},
	}
}

func runBrowse() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLogger(cfg.App.LogLevel)
	state := newCatalogState(cfg, logger)

	ctx, cancel := signalContext()
	defer cancel()

	p := tea.NewProgram(newBrowseModel(ctx, state, genre.Default()), tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browse: %w", err)
	}
	return nil
}

type browseScreen int

const (
	screenList browseScreen = iota
	screenDetail
	screenGoto
)

// listLoadedMsg reports the outcome of a catalog load.
type listLoadedMsg struct {
	err error
}

// browseModel is the Bubble Tea model for the interactive catalog.
type browseModel struct {
	ctx           context.Context
	state         *catalog.State
	genres        *genre.Table
	screen        browseScreen
	cards         []presenter.Card
	cursor        int
	listErr       error
	listLoading   bool
	detailLoading bool
	spinner       spinner.Model
	viewport      viewport.Model
	input         textinput.Model
	view          presenter.DetailView
	status        string
	width         int
	height        int
	ready         bool
}

func newBrowseModel(ctx context.Context, state *catalog.State, genres *genre.Table) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	ti := textinput.New()
	ti.Placeholder = "TMDb id"
	ti.CharLimit = 10

	return browseModel{
		ctx:         ctx,
		state:       state,
		genres:      genres,
		spinner:     s,
		input:       ti,
		listLoading: true,
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadList())
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}

	case listLoadedMsg:
		m.handleListLoaded(msg)
		return m, nil

	case detailResolvedMsg:
		m.handleDetailResolved(msg)
		return m, nil

	case spinner.TickMsg:
		if m.listLoading || m.detailLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch m.screen {
	case screenGoto:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	case screenDetail:
		if m.ready {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// handleResize adjusts the detail viewport on terminal resize.
func (m *browseModel) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	vpHeight := max(m.height-3, 1)
	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.viewport.SetContent(m.renderDetailContent())
}

func (m *browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return *m, tea.Quit, true
	}
	switch m.screen {
	case screenGoto:
		return m.handleGotoKey(msg)
	case screenDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *browseModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return *m, tea.Quit, true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return *m, nil, true
	case "down", "j":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
		return *m, nil, true
	case "r":
		if m.listLoading {
			return *m, nil, true
		}
		m.listLoading = true
		m.status = ""
		return *m, tea.Batch(m.spinner.Tick, m.loadList()), true
	case "g":
		m.screen = screenGoto
		m.status = ""
		m.input.SetValue("")
		return *m, m.input.Focus(), true
	case "enter":
		if len(m.cards) == 0 {
			return *m, nil, true
		}
		return *m, m.openDetail(m.cards[m.cursor].ID), true
	}
	return *m, nil, false
}

func (m *browseModel) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.screen = screenList
		return *m, nil, true
	case "enter":
		id, err := parseMovieID(strings.TrimSpace(m.input.Value()))
		m.input.Blur()
		if err != nil {
			m.screen = screenList
			m.status = err.Error()
			return *m, nil, true
		}
		return *m, m.openDetail(id), true
	}
	return *m, nil, false
}

func (m *browseModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return *m, tea.Quit, true
	case "esc", "backspace":
		m.state.ClearActive()
		m.screen = screenList
		m.detailLoading = false
		return *m, nil, true
	}
	return *m, nil, false
}

// openDetail switches to the detail screen and starts resolving id.
func (m *browseModel) openDetail(id int) tea.Cmd {
	m.screen = screenDetail
	m.detailLoading = true
	m.status = ""
	cmd := resolveDetail(m.ctx, m.state, id)
	m.view = presenter.BuildDetail(m.state.Snapshot(), m.genres)
	m.refreshViewport()
	m.viewport.GotoTop()
	return tea.Batch(m.spinner.Tick, cmd)
}

func (m *browseModel) handleListLoaded(msg listLoadedMsg) {
	if errors.Is(msg.err, catalog.ErrSuperseded) {
		return
	}
	m.listLoading = false
	m.listErr = msg.err
	m.cards = presenter.BuildCards(m.state.Movies(), m.state.PosterBaseURL(), m.genres)
	if m.cursor >= len(m.cards) {
		m.cursor = max(len(m.cards)-1, 0)
	}
}

// handleDetailResolved applies a settled selection unless the user moved on.
func (m *browseModel) handleDetailResolved(msg detailResolvedMsg) {
	if errors.Is(msg.err, catalog.ErrSuperseded) {
		return
	}
	if m.screen != screenDetail || msg.id != m.state.ActiveID() {
		return
	}
	m.detailLoading = false
	m.view = presenter.BuildDetail(m.state.Snapshot(), m.genres)
	m.refreshViewport()
}

func (m *browseModel) refreshViewport() {
	if m.ready {
		m.viewport.SetContent(m.renderDetailContent())
	}
}

func (m browseModel) View() string {
	switch m.screen {
	case screenDetail:
		return m.viewDetail()
	case screenGoto:
		return m.viewList() + "\n" + styleInfo.Render("Go to: ") + m.input.View()
	default:
		return m.viewList()
	}
}

func (m browseModel) viewList() string {
	var sb strings.Builder
	sb.WriteString(styleHeader.Render("Marquee"))
	sb.WriteString("\n")

	if m.listLoading && len(m.cards) == 0 {
		sb.WriteString(m.spinner.View() + styleDim.Render(" Loading catalog..."))
		return sb.String()
	}
	if m.listErr != nil {
		sb.WriteString(styleError.Render("Failed to load catalog: " + m.listErr.Error()))
		sb.WriteString("\n")
	}

	first, last := m.visibleRange()
	for i := first; i < last; i++ {
		line := renderCardLine(i+1, m.cards[i])
		if i == m.cursor {
			line = styleCursor.Render("> ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	footer := "↑/↓ move · enter open · g go to id · r reload · q quit"
	if m.listLoading {
		footer = m.spinner.View() + " " + footer
	}
	if m.status != "" {
		sb.WriteString(styleError.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(styleDim.Render(footer))
	return sb.String()
}

// visibleRange returns the window of cards that fits the terminal around the cursor.
func (m browseModel) visibleRange() (int, int) {
	rows := len(m.cards)
	if m.height > 0 {
		rows = max(m.height-5, 1)
	}
	if rows >= len(m.cards) {
		return 0, len(m.cards)
	}
	first := max(m.cursor-rows/2, 0)
	last := first + rows
	if last > len(m.cards) {
		last = len(m.cards)
		first = last - rows
	}
	return first, last
}

func (m browseModel) viewDetail() string {
	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("8"))

	footer := "esc back · ↑/↓ scroll · q quit"
	if m.detailLoading {
		footer = m.spinner.View() + " " + footer
	}
	body := m.renderDetailContent()
	if m.ready {
		body = m.viewport.View()
	}
	return body + "\n" + footerStyle.Render(styleDim.Render(footer))
}

func (m browseModel) renderDetailContent() string {
	if m.screen != screenDetail {
		return ""
	}
	return renderDetail(m.view)
}

func (m browseModel) loadList() tea.Cmd {
	state := m.state
	ctx := m.ctx
	return func() tea.Msg {
		return listLoadedMsg{err: state.LoadList(ctx)}
	}
}
