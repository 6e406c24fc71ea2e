package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb/tmdbtest"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m browseModel, msg tea.Msg) (browseModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	bm, ok := updated.(browseModel)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return bm, cmd
}

// loadedBrowseModel returns a sized model with the catalog loaded.
func loadedBrowseModel(t *testing.T) (browseModel, *catalog.State, *tmdbtest.Server) {
	t.Helper()
	state, fake := newTestState(t)
	m := newBrowseModel(context.Background(), state, genre.Default())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	loaded := findMsg[listLoadedMsg](t, runCmd(m.Init()))
	m, _ = update(t, m, loaded)
	return m, state, fake
}

func TestBrowseModel_InitialState(t *testing.T) {
	state, _ := newTestState(t)
	m := newBrowseModel(context.Background(), state, genre.Default())

	if !m.listLoading {
		t.Error("should be loading initially")
	}
	if m.screen != screenList {
		t.Error("should start on the list screen")
	}
	if !strings.Contains(m.View(), "Loading catalog...") {
		t.Errorf("unexpected initial view: %q", m.View())
	}
}

func TestBrowseModel_ListLoaded(t *testing.T) {
	m, _, _ := loadedBrowseModel(t)

	if m.listLoading {
		t.Error("should not be loading after list arrived")
	}
	if len(m.cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(m.cards))
	}
	view := m.View()
	if !strings.Contains(view, "> ") || !strings.Contains(view, "The Godfather (1972)") {
		t.Errorf("unexpected list view:\n%s", view)
	}
}

func TestBrowseModel_ListFailure(t *testing.T) {
	state, fake := newTestState(t)
	fake.FailList(true)
	m := newBrowseModel(context.Background(), state, genre.Default())

	loaded := findMsg[listLoadedMsg](t, runCmd(m.Init()))
	m, _ = update(t, m, loaded)

	if m.listErr == nil {
		t.Fatal("expected list error")
	}
	if !strings.Contains(m.View(), "Failed to load catalog") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
}

func TestBrowseModel_CursorMovement(t *testing.T) {
	m, _, _ := loadedBrowseModel(t)

	m, _ = update(t, m, key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor should stay at top, got %d", m.cursor)
	}
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("j"))
	m, _ = update(t, m, key("down"))
	if m.cursor != 2 {
		t.Errorf("cursor should stop at last row, got %d", m.cursor)
	}
	m, _ = update(t, m, key("k"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestBrowseModel_OpenDetail(t *testing.T) {
	m, state, _ := loadedBrowseModel(t)
	m, _ = update(t, m, key("down"))

	m, cmd := update(t, m, key("enter"))
	if m.screen != screenDetail || !m.detailLoading {
		t.Fatalf("screen=%v loading=%v", m.screen, m.detailLoading)
	}
	if state.ActiveID() != tmdbtest.Shawshank {
		t.Errorf("ActiveID = %d", state.ActiveID())
	}

	resolved := findMsg[detailResolvedMsg](t, runCmd(cmd))
	m, _ = update(t, m, resolved)

	if m.detailLoading {
		t.Error("should stop loading once resolved")
	}
	if m.view.Title != "The Shawshank Redemption" || m.view.Director != "Frank Darabont" {
		t.Errorf("unexpected view: %+v", m.view)
	}
	if !strings.Contains(m.View(), "Frank Darabont") {
		t.Errorf("detail view missing director:\n%s", m.View())
	}
}

func TestBrowseModel_EscClearsSelection(t *testing.T) {
	m, state, _ := loadedBrowseModel(t)

	m, cmd := update(t, m, key("enter"))
	resolved := findMsg[detailResolvedMsg](t, runCmd(cmd))
	m, _ = update(t, m, resolved)

	m, _ = update(t, m, key("esc"))
	if m.screen != screenList {
		t.Error("esc should return to the list")
	}
	if _, ok := state.Detail(); ok || state.ActiveID() != 0 {
		t.Error("esc should clear the active selection")
	}
}

func TestBrowseModel_LateResolutionAfterBackIsIgnored(t *testing.T) {
	m, _, _ := loadedBrowseModel(t)

	m, cmd := update(t, m, key("enter"))
	m, _ = update(t, m, key("esc"))

	resolved := findMsg[detailResolvedMsg](t, runCmd(cmd))
	m, _ = update(t, m, resolved)

	if m.screen != screenList {
		t.Error("late resolution must not reopen the detail screen")
	}
	if m.detailLoading {
		t.Error("late resolution must not restart loading")
	}
}

func TestBrowseModel_SupersededSelection(t *testing.T) {
	m, _, _ := loadedBrowseModel(t)

	first := m.openDetail(tmdbtest.Godfather)
	second := m.openDetail(tmdbtest.GodfatherII)

	m, _ = update(t, m, findMsg[detailResolvedMsg](t, runCmd(second)))
	m, _ = update(t, m, findMsg[detailResolvedMsg](t, runCmd(first)))

	if m.view.Title != "The Godfather Part II" {
		t.Errorf("expected latest selection shown, got %q", m.view.Title)
	}
}

func TestBrowseModel_GotoID(t *testing.T) {
	m, state, _ := loadedBrowseModel(t)

	m, _ = update(t, m, key("g"))
	if m.screen != screenGoto {
		t.Fatal("g should open the id prompt")
	}
	m.input.SetValue("240")

	m, cmd := update(t, m, key("enter"))
	if m.screen != screenDetail {
		t.Fatalf("screen = %v, want detail", m.screen)
	}
	m, _ = update(t, m, findMsg[detailResolvedMsg](t, runCmd(cmd)))
	if state.ActiveID() != tmdbtest.GodfatherII || m.view.Title != "The Godfather Part II" {
		t.Errorf("unexpected selection %d / %q", state.ActiveID(), m.view.Title)
	}
}

func TestBrowseModel_GotoInvalidID(t *testing.T) {
	m, state, _ := loadedBrowseModel(t)

	m, _ = update(t, m, key("g"))
	m.input.SetValue("abc")
	m, _ = update(t, m, key("enter"))

	if m.screen != screenList {
		t.Error("invalid id should return to the list")
	}
	if !strings.Contains(m.status, "positive integer") {
		t.Errorf("status = %q", m.status)
	}
	if state.ActiveID() != 0 {
		t.Error("invalid id must not select anything")
	}
}

func TestBrowseModel_Reload(t *testing.T) {
	m, _, fake := loadedBrowseModel(t)

	m, cmd := update(t, m, key("r"))
	if !m.listLoading {
		t.Fatal("r should start a reload")
	}
	m, _ = update(t, m, findMsg[listLoadedMsg](t, runCmd(cmd)))
	if m.listLoading || len(m.cards) != 3 {
		t.Errorf("loading=%v cards=%d", m.listLoading, len(m.cards))
	}

	var listCalls int
	for _, p := range fake.Requests() {
		if p == "/movie/top_rated" {
			listCalls++
		}
	}
	if listCalls != 2 {
		t.Errorf("expected 2 list requests, got %d", listCalls)
	}
}

func TestBrowseModel_ReloadSurvivesDetailRoundTrip(t *testing.T) {
	m, _, fake := loadedBrowseModel(t)

	m, reload := update(t, m, key("r"))
	m, _ = update(t, m, key("enter"))
	m, _ = update(t, m, key("esc"))

	if !m.listLoading {
		t.Fatal("leaving the detail screen must not end the list reload")
	}
	if m.detailLoading {
		t.Error("detail should not be loading after esc")
	}
	if !strings.Contains(m.View(), "reload") || !strings.Contains(m.View(), m.spinner.View()) {
		t.Errorf("expected reload spinner in footer:\n%s", m.View())
	}

	m, cmd := update(t, m, key("r"))
	if cmd != nil {
		t.Error("r must not start a second load while one is running")
	}

	m, _ = update(t, m, findMsg[listLoadedMsg](t, runCmd(reload)))
	if m.listLoading {
		t.Error("list should stop loading once the reload lands")
	}

	var listCalls int
	for _, p := range fake.Requests() {
		if p == "/movie/top_rated" {
			listCalls++
		}
	}
	if listCalls != 2 {
		t.Errorf("expected 2 list requests, got %d", listCalls)
	}
}

func TestBrowseModel_Quit(t *testing.T) {
	m, _, _ := loadedBrowseModel(t)

	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := update(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestBrowseModel_VisibleRange(t *testing.T) {
	m, _, _ := loadedBrowseModel(t)
	m.height = 6 // room for a single row

	m.cursor = 2
	first, last := m.visibleRange()
	if first != 2 || last != 3 {
		t.Errorf("visibleRange = %d..%d, want 2..3", first, last)
	}
}
