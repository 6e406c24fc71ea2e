package main

import (
	"fmt"
	"strings"

	"github.com/vadimtrunov/Marquee/internal/presenter"
)

const (
	homeTitle      = "Top 10 rated Movies"
	homeSize       = 10
	ratingBarWidth = 20
)

// ratingBar renders a filled/empty bar followed by the percentage.
func ratingBar(percent float64, width int) string {
	if width <= 0 {
		width = ratingBarWidth
	}
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	bar := styleRating.Render(strings.Repeat("█", filled)) +
		styleDim.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %.1f%%", bar, percent)
}

// renderCardLine formats one catalog row.
func renderCardLine(rank int, c presenter.Card) string {
	title := c.Title
	if c.Year != "" {
		title += " (" + c.Year + ")"
	}
	return fmt.Sprintf("%2d. %s  %s  %s",
		rank,
		styleTitle.Render(title),
		styleRating.Render(c.Rating),
		styleDim.Render(c.Votes+" votes"),
	)
}

// renderHome formats the home screen list.
func renderHome(cards []presenter.Card) string {
	var sb strings.Builder
	sb.WriteString(styleHeader.Render(homeTitle))
	sb.WriteString("\n")
	if len(cards) == 0 {
		sb.WriteString(styleDim.Render("No movies available."))
		sb.WriteString("\n")
		return sb.String()
	}
	for i, c := range cards {
		sb.WriteString(renderCardLine(i+1, c))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderDetail formats the detail screen.
func renderDetail(v presenter.DetailView) string {
	if v.DetailError != "" {
		return styleError.Render("Failed to load movie: "+v.DetailError) + "\n"
	}
	if v.Loading {
		return styleDim.Render("Loading...") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(styleHeader.Render(v.Title))
	sb.WriteString("\n")
	if v.Tagline != "" {
		sb.WriteString(styleInfo.Render(v.Tagline))
		sb.WriteString("\n\n")
	}

	var meta []string
	for _, s := range []string{v.ReleaseDate, v.Runtime, v.Genres} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if len(meta) > 0 {
		sb.WriteString(styleDim.Render(strings.Join(meta, " · ")))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%s  %s\n", ratingBar(v.RatingValue, ratingBarWidth), styleDim.Render("("+v.Votes+" votes)"))

	if v.Overview != "" {
		sb.WriteString("\n")
		sb.WriteString(v.Overview)
		sb.WriteString("\n")
	}
	if v.PosterURL != "" {
		sb.WriteString(styleDim.Render("Poster: " + v.PosterURL))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	switch {
	case v.CreditsError != "":
		sb.WriteString(styleDim.Render("Credits not available"))
		sb.WriteString("\n")
	case v.CreditsLoading:
		sb.WriteString(styleDim.Render("Loading credits..."))
		sb.WriteString("\n")
	default:
		writeCredit(&sb, "Director", v.Director)
		writeCredit(&sb, "Writers", v.Writers)
		writeCredit(&sb, "Stars", v.Stars)
	}
	return sb.String()
}

func writeCredit(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(styleTitle.Render(label+":") + " " + value + "\n")
}
