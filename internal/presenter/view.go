package presenter

import (
	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
)

// Card is a list entry as shown on the home listing.
type Card struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Year        string  `json:"year,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Rating      string  `json:"rating"`
	RatingValue float64 `json:"rating_value"`
	Votes       string  `json:"votes"`
	Genres      string  `json:"genres"`
	Overview    string  `json:"overview,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
}

// DetailView is the render model for the detail page.
type DetailView struct {
	ID          int     `json:"id"`
	Title       string  `json:"title,omitempty"`
	Tagline     string  `json:"tagline,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Runtime     string  `json:"runtime,omitempty"`
	Rating      string  `json:"rating,omitempty"`
	RatingValue float64 `json:"rating_value,omitempty"`
	Votes       string  `json:"votes,omitempty"`
	Genres      string  `json:"genres,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`

	Director string `json:"director,omitempty"`
	Writers  string `json:"writers,omitempty"`
	Stars    string `json:"stars,omitempty"`

	// Loading is set while the detail record is in flight.
	Loading        bool `json:"loading"`
	CreditsLoading bool `json:"credits_loading"`

	DetailError  string `json:"detail_error,omitempty"`
	CreditsError string `json:"credits_error,omitempty"`
}

// Resolved reports whether the detail record is available.
func (v DetailView) Resolved() bool {
	return !v.Loading && v.DetailError == "" && v.Title != ""
}

// BuildCard builds the list entry for m.
func BuildCard(m tmdb.Movie, posterBase string, genres *genre.Table) Card {
	return Card{
		ID:          m.ID,
		Title:       m.Title,
		Year:        ReleaseYear(m.ReleaseDate),
		ReleaseDate: m.ReleaseDate,
		Rating:      FormatRatingPercentage(m.VoteAverage) + "%",
		RatingValue: RatingPercentage(m.VoteAverage),
		Votes:       FormatVoteCount(m.VoteCount),
		Genres:      ResolveGenreNames(m.GenreIDList(), genres),
		Overview:    m.Overview,
		PosterURL:   ImageURL(posterBase, m.PosterPath),
	}
}

// BuildCards builds cards for movies in order.
func BuildCards(movies []tmdb.Movie, posterBase string, genres *genre.Table) []Card {
	cards := make([]Card, len(movies))
	for i, m := range movies {
		cards[i] = BuildCard(m, posterBase, genres)
	}
	return cards
}

// BuildDetail builds the detail page model from the state's active selection.
func BuildDetail(snap catalog.DetailSnapshot, genres *genre.Table) DetailView {
	v := DetailView{
		ID:             snap.ActiveID,
		Loading:        snap.DetailPending,
		CreditsLoading: snap.CredentialsPending,
	}
	if snap.DetailErr != nil {
		v.DetailError = snap.DetailErr.Error()
	}
	if snap.CredentialsErr != nil {
		v.CreditsError = snap.CredentialsErr.Error()
	}

	if m := snap.Detail; m != nil {
		v.Title = m.Title
		v.Tagline = m.Tagline
		v.ReleaseDate = m.ReleaseDate
		v.Runtime = FormatRuntime(m.Runtime)
		v.Rating = FormatRatingPercentage(m.VoteAverage) + "%"
		v.RatingValue = RatingPercentage(m.VoteAverage)
		v.Votes = FormatVoteCount(m.VoteCount)
		v.Genres = ResolveGenreNames(m.GenreIDList(), genres)
		v.Overview = m.Overview
		v.PosterURL = ImageURL(snap.PosterBaseURL, m.PosterPath)
	}
	if c := snap.Credentials; c != nil {
		v.Director = c.Director
		v.Writers = c.Writers
		v.Stars = c.Stars
	}
	return v
}
