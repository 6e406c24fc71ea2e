package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
	"github.com/vadimtrunov/Marquee/internal/presenter"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	errorMsg        = "An error occurred while processing your request. Please try again."
	resetMsg        = "Session reset. Send /top to load the catalog again."
	welcomeMsg      = "Welcome to Marquee! Send /top for the top rated movies or /movie <id> for a single title."
	usageMsg        = "Usage: /movie <tmdb id>"
	notFoundMsg     = "Movie not found."

	callbackPrefix = "movie:" // prefix for movie selection callback data

	topListSize    = 10
	maxButtonLabel = 30 // max characters in inline keyboard button label
)

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}

	// Commands may carry a bot mention, e.g. /top@marquee_bot.
	cmd, _, _ := strings.Cut(fields[0], "@")
	switch cmd {
	case "/start", "/help":
		b.sendText(chatID, welcomeMsg)
	case "/reset":
		b.sessions.reset(userID)
		b.sendText(chatID, resetMsg)
	case "/top":
		b.handleTop(ctx, userID, chatID)
	case "/movie":
		if len(fields) < 2 {
			b.sendText(chatID, usageMsg)
			return
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil || id <= 0 {
			b.sendText(chatID, usageMsg)
			return
		}
		b.handleDetail(ctx, userID, chatID, id)
	default:
		b.sendText(chatID, welcomeMsg)
	}
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	b.request(tgbotapi.NewCallback(cq.ID, ""))

	if !b.sessions.isAllowed(userID) {
		return
	}

	raw, ok := strings.CutPrefix(cq.Data, callbackPrefix)
	if !ok {
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		b.logger.Warn("invalid callback data", slog.String("data", cq.Data))
		return
	}
	b.handleDetail(ctx, userID, chatID, id)
}

// handleTop sends the top-10 listing with one button per movie.
func (b *Bot) handleTop(ctx context.Context, userID, chatID int64) {
	state := b.session(userID, chatID)
	if state == nil {
		return
	}
	b.request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	if len(state.Movies()) == 0 {
		if err := state.LoadList(ctx); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
			b.logger.Error("load list failed",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	cards := presenter.BuildCards(state.Top(topListSize), state.PosterBaseURL(), b.genres)
	if len(cards) == 0 {
		b.sendText(chatID, errorMsg)
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatTopList(cards))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = buildMovieKeyboard(cards)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		plain := tgbotapi.NewMessage(chatID, plainTopList(cards))
		plain.ReplyMarkup = msg.ReplyMarkup
		b.send(plain)
	}
}

// handleDetail resolves one movie on the user's session and replies with
// its poster and details. A resolution superseded by a newer selection
// from the same user is dropped silently.
func (b *Bot) handleDetail(ctx context.Context, userID, chatID int64, id int) {
	state := b.session(userID, chatID)
	if state == nil {
		return
	}
	b.request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	if err := state.SelectDetail(ctx, id).Wait(ctx); err != nil {
		b.logger.Debug("detail resolution dropped",
			slog.Int64("user_id", userID),
			slog.Int("movie_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	view := presenter.BuildDetail(state.Snapshot(), b.genres)
	if view.ID != id {
		return
	}
	if derr := state.DetailErr(); derr != nil {
		if errors.Is(derr, tmdb.ErrNotFound) {
			b.sendText(chatID, notFoundMsg)
			return
		}
		b.logger.Error("detail fetch failed",
			slog.Int64("user_id", userID),
			slog.Int("movie_id", id),
			slog.String("error", derr.Error()),
		)
		b.sendText(chatID, errorMsg)
		return
	}

	b.sendPoster(chatID, view.PosterURL, view.Title)

	msg := tgbotapi.NewMessage(chatID, FormatDetail(view))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, plainDetail(view))
	}
}

// session returns the user's catalog state, replying with an error if it
// cannot be created.
func (b *Bot) session(userID, chatID int64) *catalog.State {
	state := b.sessions.getOrCreate(userID, b.stateFactory)
	if state == nil {
		b.logger.Error("failed to create catalog session", slog.Int64("user_id", userID))
		b.sendText(chatID, errorMsg)
	}
	return state
}

// buildMovieKeyboard builds one button per card, one per row.
func buildMovieKeyboard(cards []presenter.Card) *tgbotapi.InlineKeyboardMarkup {
	if len(cards) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cards))
	for i, c := range cards {
		label := c.Title
		if r := []rune(label); len(r) > maxButtonLabel {
			label = string(r[:maxButtonLabel]) + "…"
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d. %s", i+1, label),
			callbackPrefix+strconv.Itoa(c.ID),
		)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func plainTopList(cards []presenter.Card) string {
	lines := []string{topListTitle, ""}
	for i, c := range cards {
		lines = append(lines, fmt.Sprintf("%d. %s · %s · %s votes", i+1, c.Title, c.Rating, c.Votes))
	}
	return strings.Join(lines, "\n")
}

func plainDetail(v presenter.DetailView) string {
	lines := []string{v.Title}
	if v.Runtime != "" {
		lines = append(lines, v.ReleaseDate+" · "+v.Runtime)
	}
	lines = append(lines, fmt.Sprintf("Rating: %s (%s votes)", v.Rating, v.Votes), v.Genres, "", v.Overview)
	if v.Director != "" {
		lines = append(lines, "", "Director: "+v.Director, "Writers: "+v.Writers, "Stars: "+v.Stars)
	}
	return strings.Join(lines, "\n")
}

// sendPoster sends a movie poster photo with a caption.
// Telegram fetches the URL itself; failures are not reported to the user.
func (b *Bot) sendPoster(chatID int64, url, caption string) {
	if url == "" {
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Debug("failed to send poster",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("failed to send message",
			slog.String("error", err.Error()),
		)
	}
}

// request issues a best-effort call whose response carries no message,
// such as callback acks and chat actions.
func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.api.Request(c); err != nil {
		b.logger.Debug("telegram request failed", slog.String("error", err.Error()))
	}
}
