// Package tmdbtest provides an in-process fake of the TMDb catalog endpoints
// for tests in other packages.
package tmdbtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
)

// Fixture ids served by NewServer.
const (
	Godfather   = 238
	Shawshank   = 278
	GodfatherII = 240
)

// Server is a fake TMDb API. Fields may be changed between requests.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	movies   []tmdb.Movie
	credits  map[int]tmdb.Credits
	failList bool
	requests []string
}

// NewServer starts a fake serving three well-known movies. It is closed
// when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		movies:  fixtureMovies(),
		credits: fixtureCredits(),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// FailList makes the list endpoint answer 500.
func (s *Server) FailList(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = fail
}

// Requests returns the paths requested so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	s.mu.Unlock()

	if r.URL.Query().Get("api_key") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status_message": "Invalid API key"})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/movie/")
	switch {
	case path == "top_rated":
		s.serveList(w)
	case strings.HasSuffix(path, "/credits"):
		s.serveCredits(w, strings.TrimSuffix(path, "/credits"))
	default:
		s.serveMovie(w, path)
	}
}

func (s *Server) serveList(w http.ResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status_message": "internal error"})
		return
	}
	results := make([]map[string]any, 0, len(s.movies))
	for _, m := range s.movies {
		ids := m.GenreIDList()
		results = append(results, map[string]any{
			"id":           m.ID,
			"title":        m.Title,
			"overview":     m.Overview,
			"release_date": m.ReleaseDate,
			"poster_path":  m.PosterPath,
			"vote_average": m.VoteAverage,
			"vote_count":   m.VoteCount,
			"genre_ids":    ids,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":          1,
		"results":       results,
		"total_pages":   1,
		"total_results": len(results),
	})
}

func (s *Server) serveMovie(w http.ResponseWriter, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "not found"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movies {
		if m.ID == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "The resource you requested could not be found."})
}

func (s *Server) serveCredits(w http.ResponseWriter, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "not found"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credits[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fixtureMovies() []tmdb.Movie {
	drama := genre.Genre{ID: 18, Name: "Drama"}
	crime := genre.Genre{ID: 80, Name: "Crime"}
	return []tmdb.Movie{
		{
			ID: Godfather, Title: "The Godfather", Tagline: "An offer you can't refuse.",
			Overview:    "Spanning the years 1945 to 1955, a chronicle of the fictional Italian-American Corleone crime family.",
			ReleaseDate: "1972-03-14", Runtime: 175, PosterPath: "/3bhkrj58Vtu7enYsRolD1fZdja1.jpg",
			VoteAverage: 8.7, VoteCount: 18602, Genres: []genre.Genre{drama, crime},
		},
		{
			ID: Shawshank, Title: "The Shawshank Redemption", Tagline: "Fear can hold you prisoner. Hope can set you free.",
			Overview:    "Imprisoned in the 1940s for the double murder of his wife and her lover, upstanding banker Andy Dufresne begins a new life at the Shawshank prison.",
			ReleaseDate: "1994-09-23", Runtime: 142, PosterPath: "/9cqNxx0GxF0bflZmeSMuL5tnGzr.jpg",
			VoteAverage: 8.7, VoteCount: 26189, Genres: []genre.Genre{drama, crime},
		},
		{
			ID: GodfatherII, Title: "The Godfather Part II", Tagline: "The saga continues.",
			Overview:    "In the continuing saga of the Corleone crime family, a young Vito Corleone grows up in Sicily and in 1910s New York.",
			ReleaseDate: "1974-12-20", Runtime: 202, PosterPath: "/hek3koDUyRQk7FIhPXsa6mT2Zc3.jpg",
			VoteAverage: 8.6, VoteCount: 11200, Genres: []genre.Genre{drama, crime},
		},
	}
}

func fixtureCredits() map[int]tmdb.Credits {
	return map[int]tmdb.Credits{
		Godfather: {
			ID: Godfather,
			Cast: []tmdb.CastMember{
				{Name: "Marlon Brando", Character: "Don Vito Corleone", Order: 0},
				{Name: "Al Pacino", Character: "Michael Corleone", Order: 1},
				{Name: "James Caan", Character: "Sonny Corleone", Order: 2},
				{Name: "Robert Duvall", Character: "Tom Hagen", Order: 3},
			},
			Crew: []tmdb.CrewMember{
				{Name: "Francis Ford Coppola", Department: "Directing", Job: "Director"},
				{Name: "Mario Puzo", Department: "Writing", Job: "Writer"},
				{Name: "Francis Ford Coppola", Department: "Writing", Job: "Writer"},
			},
		},
		Shawshank: {
			ID: Shawshank,
			Cast: []tmdb.CastMember{
				{Name: "Tim Robbins", Character: "Andy Dufresne", Order: 0},
				{Name: "Morgan Freeman", Character: "Ellis Boyd 'Red' Redding", Order: 1},
				{Name: "Bob Gunton", Character: "Warden Norton", Order: 2},
			},
			Crew: []tmdb.CrewMember{
				{Name: "Frank Darabont", Department: "Directing", Job: "Director"},
				{Name: "Frank Darabont", Department: "Writing", Job: "Screenplay"},
			},
		},
		GodfatherII: {
			ID: GodfatherII,
			Cast: []tmdb.CastMember{
				{Name: "Al Pacino", Order: 0},
				{Name: "Robert De Niro", Order: 1},
			},
			Crew: []tmdb.CrewMember{
				{Name: "Francis Ford Coppola", Job: "Director"},
				{Name: "Mario Puzo", Job: "Writer"},
			},
		},
	}
}
