// Package catalog holds the session-wide movie catalog and the active
// detail view's resolved record and credits.
//
// A State is created once by the composition root and handed to every
// view that needs catalog data. Mutations happen only through LoadList,
// SelectDetail and ClearActive; each replaces one sub-state wholesale
// under the lock.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
)

// Fetcher is the transport the state resolves data through.
type Fetcher interface {
	FetchList(ctx context.Context) ([]tmdb.Movie, error)
	FetchByID(ctx context.Context, id int) (*tmdb.Movie, error)
	FetchCredits(ctx context.Context, id int) (*tmdb.CredentialSet, error)
}

// ErrSuperseded is reported by Resolution.Wait when a newer SelectDetail
// or ClearActive made at least one of the resolution's results stale.
var ErrSuperseded = errors.New("catalog: resolution superseded")

// Options configures a State. APIKey and PosterBaseURL are fixed for the
// State's lifetime.
type Options struct {
	APIKey        string
	PosterBaseURL string
	Logger        *slog.Logger
}

// ticket tags an in-flight resolution with the selection it was issued for.
type ticket struct {
	id  int
	gen uint64
}

// State is the catalog store. It is safe for concurrent use.
type State struct {
	client        Fetcher
	apiKey        string
	posterBaseURL string
	logger        *slog.Logger

	mu      sync.RWMutex
	movies  []tmdb.Movie
	listErr error
	listGen uint64

	gen                uint64
	active             ticket
	detail             *tmdb.Movie
	detailErr          error
	detailPending      bool
	credentials        *tmdb.CredentialSet
	credentialsErr     error
	credentialsPending bool
}

// New creates an empty State backed by client.
func New(client Fetcher, opts Options) *State {
	if client == nil {
		panic("catalog.New: client must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		client:        client,
		apiKey:        opts.APIKey,
		posterBaseURL: opts.PosterBaseURL,
		logger:        logger,
	}
}

// LoadList fetches the catalog and replaces the movie list on success.
// Repeated ids are dropped; the first occurrence keeps its position.
// On failure the list is left untouched and the error is recorded for
// ListErr. If a later LoadList started before this one finished, this
// result is discarded and ErrSuperseded is returned.
func (s *State) LoadList(ctx context.Context) error {
	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	movies, err := s.client.FetchList(ctx)

	s.mu.Lock()
	if gen != s.listGen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale list result")
		return ErrSuperseded
	}
	if err != nil {
		s.listErr = err
		s.mu.Unlock()
		s.logger.Warn("load list failed", slog.String("error", err.Error()))
		return err
	}
	list := make([]tmdb.Movie, 0, len(movies))
	seen := make(map[int]struct{}, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		list = append(list, m.Clone())
	}
	s.movies = list
	s.listErr = nil
	s.mu.Unlock()

	s.logger.Debug("catalog loaded", slog.Int("movies", len(list)))
	return nil
}

// SelectDetail makes id the active movie and starts resolving its detail
// record and credits concurrently. The previous detail and credits are
// cleared before it returns. Each result is applied only if id is still
// the active selection when that result arrives.
//
// A non-positive id clears the selection, records ErrInvalidID for both
// halves and returns an already finished resolution.
func (s *State) SelectDetail(ctx context.Context, id int) *Resolution {
	if id <= 0 {
		return s.rejectSelection(id)
	}

	s.mu.Lock()
	s.gen++
	t := ticket{id: id, gen: s.gen}
	s.active = t
	s.detail, s.detailErr, s.detailPending = nil, nil, true
	s.credentials, s.credentialsErr, s.credentialsPending = nil, nil, true
	s.mu.Unlock()

	s.logger.Debug("resolving detail", slog.Int("movie_id", id))

	res := newResolution(id)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		movie, err := s.client.FetchByID(ctx, id)
		if !s.applyDetail(t, movie, err) {
			res.superseded.Store(true)
		}
	}()
	go func() {
		defer wg.Done()
		set, err := s.client.FetchCredits(ctx, id)
		if !s.applyCredentials(t, set, err) {
			res.superseded.Store(true)
		}
	}()
	go func() {
		wg.Wait()
		close(res.done)
	}()
	return res
}

func (s *State) rejectSelection(id int) *Resolution {
	err := fmt.Errorf("select movie %d: %w", id, tmdb.ErrInvalidID)

	s.mu.Lock()
	s.gen++
	s.active = ticket{gen: s.gen}
	s.detail, s.detailErr, s.detailPending = nil, err, false
	s.credentials, s.credentialsErr, s.credentialsPending = nil, err, false
	s.mu.Unlock()

	s.logger.Warn("rejected selection", slog.Int("movie_id", id))

	res := newResolution(id)
	close(res.done)
	return res
}

// ClearActive drops the active selection. Results still in flight for it
// become stale and are discarded when they arrive.
func (s *State) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.active = ticket{gen: s.gen}
	s.detail, s.detailErr, s.detailPending = nil, nil, false
	s.credentials, s.credentialsErr, s.credentialsPending = nil, nil, false
}

func (s *State) applyDetail(t ticket, movie *tmdb.Movie, err error) bool {
	if err == nil && movie == nil {
		err = tmdb.ErrMalformedResponse
	}

	s.mu.Lock()
	if t != s.active {
		s.mu.Unlock()
		s.logger.Debug("discarding stale detail", slog.Int("movie_id", t.id))
		return false
	}
	s.detailPending = false
	if err != nil {
		s.detail, s.detailErr = nil, err
	} else {
		m := movie.Clone()
		s.detail, s.detailErr = &m, nil
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("detail unresolved", slog.Int("movie_id", t.id), slog.String("error", err.Error()))
	}
	return true
}

func (s *State) applyCredentials(t ticket, set *tmdb.CredentialSet, err error) bool {
	if err == nil && set == nil {
		err = tmdb.ErrMalformedResponse
	}

	s.mu.Lock()
	if t != s.active {
		s.mu.Unlock()
		s.logger.Debug("discarding stale credits", slog.Int("movie_id", t.id))
		return false
	}
	s.credentialsPending = false
	if err != nil {
		s.credentials, s.credentialsErr = nil, err
	} else {
		c := *set
		s.credentials, s.credentialsErr = &c, nil
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("credits unresolved", slog.Int("movie_id", t.id), slog.String("error", err.Error()))
	}
	return true
}
