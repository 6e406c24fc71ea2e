package catalog

import "github.com/vadimtrunov/Marquee/internal/metadata/tmdb"

// DetailSnapshot is a consistent view of the active selection.
// Detail and Credentials are nil until resolved.
type DetailSnapshot struct {
	ActiveID           int
	Detail             *tmdb.Movie
	Credentials        *tmdb.CredentialSet
	DetailPending      bool
	CredentialsPending bool
	DetailErr          error
	CredentialsErr     error
	PosterBaseURL      string
}

// APIKey returns the configured TMDb API key.
func (s *State) APIKey() string { return s.apiKey }

// PosterBaseURL returns the image base URL posters are joined onto.
func (s *State) PosterBaseURL() string { return s.posterBaseURL }

// Movies returns a copy of the catalog in service order.
func (s *State) Movies() []tmdb.Movie {
	return s.Top(-1)
}

// Top returns a copy of the first n movies. n < 0 returns all of them.
func (s *State) Top(n int) []tmdb.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 || n > len(s.movies) {
		n = len(s.movies)
	}
	out := make([]tmdb.Movie, n)
	for i := range n {
		out[i] = s.movies[i].Clone()
	}
	return out
}

// Movie returns the list record for id, if the catalog holds one.
func (s *State) Movie(id int) (tmdb.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.movies {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return tmdb.Movie{}, false
}

// ListErr returns the error from the most recent failed LoadList, or nil
// once a later load succeeds.
func (s *State) ListErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listErr
}

// ActiveID returns the selected movie id, or 0 when nothing is selected.
func (s *State) ActiveID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.id
}

// Detail returns the resolved detail record for the active movie.
func (s *State) Detail() (tmdb.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail == nil {
		return tmdb.Movie{}, false
	}
	return s.detail.Clone(), true
}

// Credentials returns the resolved credits for the active movie.
func (s *State) Credentials() (tmdb.CredentialSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credentials == nil {
		return tmdb.CredentialSet{}, false
	}
	return *s.credentials, true
}

// Director returns the active movie's director, or "" while unresolved.
func (s *State) Director() string {
	c, _ := s.Credentials()
	return c.Director
}

// Writers returns the active movie's writers, or "" while unresolved.
func (s *State) Writers() string {
	c, _ := s.Credentials()
	return c.Writers
}

// Stars returns the active movie's top-billed cast, or "" while unresolved.
func (s *State) Stars() string {
	c, _ := s.Credentials()
	return c.Stars
}

// DetailErr returns why the active detail record is unresolved, if it failed.
func (s *State) DetailErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailErr
}

// CredentialsErr returns why the active credits are unresolved, if they failed.
func (s *State) CredentialsErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credentialsErr
}

// Pending reports which halves of the active selection are still in flight.
func (s *State) Pending() (detail, credentials bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailPending, s.credentialsPending
}

// Snapshot returns the active selection as one consistent value.
func (s *State) Snapshot() DetailSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := DetailSnapshot{
		ActiveID:           s.active.id,
		DetailPending:      s.detailPending,
		CredentialsPending: s.credentialsPending,
		DetailErr:          s.detailErr,
		CredentialsErr:     s.credentialsErr,
		PosterBaseURL:      s.posterBaseURL,
	}
	if s.detail != nil {
		m := s.detail.Clone()
		snap.Detail = &m
	}
	if s.credentials != nil {
		c := *s.credentials
		snap.Credentials = &c
	}
	return snap
}
