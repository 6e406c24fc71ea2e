package tmdb

import "github.com/vadimtrunov/Marquee/internal/genre"

// Movie is a TMDb movie record. List responses omit Runtime, Tagline and
// Genres; detail responses omit GenreIDs.
type Movie struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Overview     string        `json:"overview"`
	Tagline      string        `json:"tagline,omitempty"`
	ReleaseDate  string        `json:"release_date"`
	Runtime      int           `json:"runtime,omitempty"`
	PosterPath   string        `json:"poster_path"`
	BackdropPath string        `json:"backdrop_path"`
	VoteAverage  float64       `json:"vote_average"`
	VoteCount    int           `json:"vote_count"`
	GenreIDs     []int         `json:"genre_ids"`
	Genres       []genre.Genre `json:"genres"`
}

// GenreIDList returns GenreIDs when present, otherwise the ids of Genres.
// Nil means the record carries no genre sequence at all.
func (m Movie) GenreIDList() []int {
	if m.GenreIDs != nil {
		return m.GenreIDs
	}
	if m.Genres == nil {
		return nil
	}
	ids := make([]int, len(m.Genres))
	for i, g := range m.Genres {
		ids[i] = g.ID
	}
	return ids
}

// Clone returns a deep copy so callers never share slices with the store.
func (m Movie) Clone() Movie {
	if m.GenreIDs != nil {
		ids := make([]int, len(m.GenreIDs))
		copy(ids, m.GenreIDs)
		m.GenreIDs = ids
	}
	if m.Genres != nil {
		genres := make([]genre.Genre, len(m.Genres))
		copy(genres, m.Genres)
		m.Genres = genres
	}
	return m
}

// CastMember is a single cast entry from the credits endpoint.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is a single crew entry from the credits endpoint.
type CrewMember struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Job        string `json:"job"`
}

// Credits is the /movie/{id}/credits response.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CredentialSet is the director/writers/stars summary shown on a detail page.
type CredentialSet struct {
	Director string `json:"director"`
	Writers  string `json:"writers"`
	Stars    string `json:"stars"`
}

// listResponse is the TMDb paginated list response.
type listResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
