package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vadimtrunov/Marquee/internal/httpclient"
)

const (
	// DefaultBaseURL is the TMDb v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL serves w500 posters and backdrops.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

	listPath      = "/movie/top_rated"
	maxErrorBody  = 512
	maxBodyLength = 8 << 20
)

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	HTTP    httpclient.Config
}

// Client is a TMDb API v3 client for the catalog endpoints.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  *slog.Logger
}

// New creates a new TMDb client.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    httpclient.New(cfg.HTTP, logger),
		logger:  logger,
	}
}

// NewForTest creates a TMDb client with a custom base URL for testing.
// Exported because it is used by cross-package tests.
func NewForTest(baseURL string, logger *slog.Logger) *Client {
	return New(Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		HTTP:    httpclient.DefaultConfig(),
	}, logger)
}

// FetchList returns the top-rated catalog in service order, without
// duplicate ids.
func (c *Client) FetchList(ctx context.Context) ([]Movie, error) {
	var resp listResponse
	if err := c.get(ctx, listPath, &resp); err != nil {
		return nil, fmt.Errorf("fetch list: %w", err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("fetch list: %w: missing results", ErrMalformedResponse)
	}
	return dedupe(resp.Results), nil
}

// FetchByID returns the full detail record for a movie.
func (c *Client) FetchByID(ctx context.Context, id int) (*Movie, error) {
	if id <= 0 {
		return nil, fmt.Errorf("fetch movie %d: %w", id, ErrInvalidID)
	}

	var movie Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), &movie); err != nil {
		return nil, fmt.Errorf("fetch movie %d: %w", id, err)
	}
	if movie.ID != id {
		return nil, fmt.Errorf("fetch movie %d: %w: response carries id %d", id, ErrMalformedResponse, movie.ID)
	}
	return &movie, nil
}

// FetchCredits returns the director/writers/stars summary for a movie.
func (c *Client) FetchCredits(ctx context.Context, id int) (*CredentialSet, error) {
	if id <= 0 {
		return nil, fmt.Errorf("fetch credits %d: %w", id, ErrInvalidID)
	}

	var credits Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), &credits); err != nil {
		return nil, fmt.Errorf("fetch credits %d: %w", id, err)
	}
	set := ExtractCredentials(credits)
	return &set, nil
}

// PosterURL joins an image base URL and a service-provided path.
// The result is not checked for reachability.
func PosterURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	return baseURL + path
}

// get performs an authenticated GET request to the TMDb API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %w", ErrTransport, err)
	}

	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("tmdb request", slog.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyLength)).Decode(result); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func dedupe(movies []Movie) []Movie {
	seen := make(map[int]struct{}, len(movies))
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
