package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb/tmdbtest"
	"github.com/vadimtrunov/Marquee/internal/presenter"
)

// fakeSender records everything the bot sends.
type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	failMD   bool // reject MarkdownV2 messages
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok && f.failMD && m.ParseMode == tgbotapi.ModeMarkdownV2 {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	msgs := f.messages()
	if len(msgs) == 0 {
		t.Fatal("no messages sent")
	}
	return msgs[len(msgs)-1].Text
}

func newTestBot(t *testing.T, allowed []int64) (*Bot, *fakeSender, *tmdbtest.Server) {
	t.Helper()
	fake := tmdbtest.NewServer(t)
	api := &fakeSender{}
	factory := func() *catalog.State {
		return catalog.New(tmdb.NewForTest(fake.URL, discardLogger), catalog.Options{
			APIKey:        "test-key",
			PosterBaseURL: "https://image.tmdb.org/t/p/w500",
			Logger:        discardLogger,
		})
	}
	return newBot(api, allowed, factory, discardLogger), api, fake
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func TestHandleMessage_Start(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/start"))

	if got := api.lastText(t); got != welcomeMsg {
		t.Errorf("expected welcome message, got %q", got)
	}
}

func TestHandleMessage_Unauthorized(t *testing.T) {
	b, api, fake := newTestBot(t, []int64{42})
	b.handleMessage(context.Background(), textMessage(1, "/top"))

	if got := api.lastText(t); got != unauthorizedMsg {
		t.Errorf("expected unauthorized message, got %q", got)
	}
	if len(fake.Requests()) != 0 {
		t.Error("unauthorized user must not trigger TMDb requests")
	}
	if b.sessions.count() != 0 {
		t.Error("unauthorized user must not get a session")
	}
}

func TestHandleMessage_Top(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/top"))

	msgs := api.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("ParseMode = %q", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "The Godfather") || !strings.Contains(msg.Text, "18\\.6k votes") {
		t.Errorf("unexpected list text: %q", msg.Text)
	}

	kb, ok := msg.ReplyMarkup.(*tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard, got %T", msg.ReplyMarkup)
	}
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(kb.InlineKeyboard))
	}
	data := kb.InlineKeyboard[0][0].CallbackData
	if data == nil || *data != "movie:238" {
		t.Errorf("unexpected callback data: %v", data)
	}
}

func TestHandleMessage_TopReusesLoadedList(t *testing.T) {
	b, _, fake := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/top"))
	b.handleMessage(context.Background(), textMessage(1, "/top"))

	var listCalls int
	for _, p := range fake.Requests() {
		if p == "/movie/top_rated" {
			listCalls++
		}
	}
	if listCalls != 1 {
		t.Errorf("expected 1 list request, got %d", listCalls)
	}
}

func TestHandleMessage_TopFailure(t *testing.T) {
	b, api, fake := newTestBot(t, nil)
	fake.FailList(true)
	b.handleMessage(context.Background(), textMessage(1, "/top"))

	if got := api.lastText(t); got != errorMsg {
		t.Errorf("expected error message, got %q", got)
	}
}

func TestHandleMessage_TopPlainFallback(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	api.failMD = true
	b.handleMessage(context.Background(), textMessage(1, "/top"))

	got := api.lastText(t)
	if !strings.HasPrefix(got, "Top 10 rated Movies") || strings.Contains(got, "\\") {
		t.Errorf("expected plain list, got %q", got)
	}
}

func TestHandleMessage_Movie(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/movie 238"))

	photos := api.photos()
	if len(photos) != 1 {
		t.Fatalf("expected 1 poster, got %d", len(photos))
	}
	if photos[0].Caption != "The Godfather" {
		t.Errorf("poster caption = %q", photos[0].Caption)
	}

	text := api.lastText(t)
	for _, want := range []string{"*The Godfather*", "175min", "*Director:* Francis Ford Coppola", "Marlon Brando, Al Pacino, James Caan"} {
		if !strings.Contains(text, want) {
			t.Errorf("detail missing %q in:\n%s", want, text)
		}
	}
}

func TestHandleMessage_MovieErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "missing id", text: "/movie", want: usageMsg},
		{name: "bad id", text: "/movie abc", want: usageMsg},
		{name: "negative id", text: "/movie -5", want: usageMsg},
		{name: "unknown movie", text: "/movie 999999", want: notFoundMsg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api, _ := newTestBot(t, nil)
			b.handleMessage(context.Background(), textMessage(1, tt.text))
			if got := api.lastText(t); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleMessage_CommandWithMention(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/start@marquee_bot"))
	if got := api.lastText(t); got != welcomeMsg {
		t.Errorf("expected welcome message, got %q", got)
	}
}

func TestHandleMessage_Reset(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/top"))
	if b.sessions.count() != 1 {
		t.Fatalf("expected 1 session, got %d", b.sessions.count())
	}

	b.handleMessage(context.Background(), textMessage(1, "/reset"))
	if b.sessions.count() != 0 {
		t.Error("expected session dropped after reset")
	}
	if got := api.lastText(t); got != resetMsg {
		t.Errorf("expected reset message, got %q", got)
	}
}

func TestHandleCallback_SelectsMovie(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	cq := &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: 7}},
		Data:    "movie:278",
	}
	b.handleCallback(context.Background(), cq)

	if len(api.requests) == 0 {
		t.Error("expected callback acknowledgement")
	}
	if text := api.lastText(t); !strings.Contains(text, "Shawshank") {
		t.Errorf("expected Shawshank detail, got %q", text)
	}
}

func TestHandleCallback_IgnoresForeignData(t *testing.T) {
	b, api, fake := newTestBot(t, nil)
	cq := &tgbotapi.CallbackQuery{
		ID:      "cb-2",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}},
		Data:    "sel:1",
	}
	b.handleCallback(context.Background(), cq)

	if len(api.messages()) != 0 {
		t.Error("expected no reply for unknown callback data")
	}
	if len(fake.Requests()) != 0 {
		t.Error("expected no TMDb requests")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	b, _, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), textMessage(1, "/movie 238"))
	b.handleMessage(context.Background(), textMessage(2, "/movie 278"))

	s1 := b.sessions.getOrCreate(1, b.stateFactory)
	s2 := b.sessions.getOrCreate(2, b.stateFactory)
	if s1.ActiveID() != 238 || s2.ActiveID() != 278 {
		t.Errorf("expected per-user selections, got %d and %d", s1.ActiveID(), s2.ActiveID())
	}
}

func TestBuildMovieKeyboard(t *testing.T) {
	if kb := buildMovieKeyboard(nil); kb != nil {
		t.Error("expected nil keyboard for empty list")
	}

	long := strings.Repeat("Ä", 40)
	kb := buildMovieKeyboard([]presenter.Card{{ID: 1, Title: long}, {ID: 2, Title: "Short"}})
	if kb == nil || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %+v", kb)
	}
	label := kb.InlineKeyboard[0][0].Text
	if want := "1. " + strings.Repeat("Ä", maxButtonLabel) + "…"; label != want {
		t.Errorf("label = %q, want %q", label, want)
	}
	if got := kb.InlineKeyboard[1][0].Text; got != "2. Short" {
		t.Errorf("label = %q", got)
	}
}
