package telegram

import (
	"fmt"
	"strings"

	"github.com/vadimtrunov/Marquee/internal/presenter"
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// RatingBar renders a percentage as a bar of width cells.
func RatingBar(percent float64, width int) string {
	if width < 1 {
		width = 10
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// topListTitle heads the /top reply.
const topListTitle = "Top 10 rated Movies"

// FormatTopList renders the home listing as MarkdownV2.
func FormatTopList(cards []presenter.Card) string {
	var sb strings.Builder
	sb.WriteString(FormatBold(topListTitle))
	sb.WriteString("\n\n")
	for i, c := range cards {
		title := c.Title
		if c.Year != "" {
			title += " (" + c.Year + ")"
		}
		line := fmt.Sprintf("%d. %s · %s · %s votes", i+1, title, c.Rating, c.Votes)
		sb.WriteString(EscapeMdV2(line))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatDetail renders a resolved detail view as MarkdownV2.
func FormatDetail(v presenter.DetailView) string {
	var sb strings.Builder
	sb.WriteString(FormatBold(v.Title))
	if v.Tagline != "" {
		sb.WriteString("\n" + FormatItalic(v.Tagline))
	}
	sb.WriteString("\n\n")

	var facts []string
	if v.ReleaseDate != "" {
		facts = append(facts, v.ReleaseDate)
	}
	if v.Runtime != "" {
		facts = append(facts, v.Runtime)
	}
	if len(facts) > 0 {
		sb.WriteString(EscapeMdV2(strings.Join(facts, " · ")) + "\n")
	}
	if v.Rating != "" {
		line := fmt.Sprintf("%s %s (%s votes)", RatingBar(v.RatingValue, 10), v.Rating, v.Votes)
		sb.WriteString(EscapeMdV2(line) + "\n")
	}
	if v.Genres != "" {
		sb.WriteString(EscapeMdV2(v.Genres) + "\n")
	}

	if v.Overview != "" {
		sb.WriteString("\n" + EscapeMdV2(v.Overview) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case v.CreditsError != "":
		sb.WriteString(FormatItalic("Credits not available"))
	case v.CreditsLoading:
		sb.WriteString(FormatItalic("Loading credits..."))
	default:
		writeCredit(&sb, "Director", v.Director)
		writeCredit(&sb, "Writers", v.Writers)
		writeCredit(&sb, "Stars", v.Stars)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeCredit(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(FormatBold(label+":") + " " + EscapeMdV2(value) + "\n")
}
