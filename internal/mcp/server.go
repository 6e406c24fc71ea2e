package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
	"github.com/vadimtrunov/Marquee/internal/presenter"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Deps holds the catalog dependencies for MCP tool handlers.
type Deps struct {
	State  *catalog.State
	Genres *genre.Table
}

// Server wraps an MCP SDK server with Marquee tool handlers.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	logger *slog.Logger

	// detailMu serializes get_movie_details so that concurrent calls do not
	// supersede each other on the shared state.
	detailMu sync.Mutex
}

// NewServer creates an MCP server with all Marquee tools registered.
func NewServer(deps Deps, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Genres == nil {
		deps.Genres = genre.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "marquee",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(listMoviesTool(), s.handleListMovies)
	s.server.AddTool(getMovieDetailsTool(), s.handleGetMovieDetails)
}

func listMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_movies",
		Description: "List the top rated movies on TMDb with rating percentage, vote count, genres and poster URL.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of movies to return (default 10)",
				},
				"refresh": map[string]any{
					"type":        "boolean",
					"description": "Fetch the list again even if it is already loaded",
				},
			},
		},
	}
}

func getMovieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_details",
		Description: "Get detailed information about a movie by its TMDb ID: runtime, genres, rating, overview, director, writers and top-billed stars.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tmdb_id": map[string]any{
					"type":        "integer",
					"description": "The TMDb ID of the movie",
				},
			},
			"required": []any{"tmdb_id"},
		},
	}
}

func (s *Server) handleListMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.State == nil {
		return toolError("catalog not configured"), nil
	}

	var args struct {
		Limit   int  `json:"limit"`
		Refresh bool `json:"refresh"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	state := s.deps.State
	if args.Refresh || len(state.Movies()) == 0 {
		if err := state.LoadList(ctx); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
			if len(state.Movies()) == 0 {
				return toolError(fmt.Sprintf("load movie list failed: %v", err)), nil
			}
			s.logger.Warn("serving previous movie list", slog.String("error", err.Error()))
		}
	}

	cards := presenter.BuildCards(state.Top(limit), state.PosterBaseURL(), s.deps.Genres)
	return toolJSON(cards)
}

func (s *Server) handleGetMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.State == nil {
		return toolError("catalog not configured"), nil
	}

	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}
	if tmdbID <= 0 {
		return toolError("tmdb_id must be a positive integer"), nil
	}

	s.detailMu.Lock()
	defer s.detailMu.Unlock()

	state := s.deps.State
	if err := state.SelectDetail(ctx, tmdbID).Wait(ctx); err != nil {
		return toolError(fmt.Sprintf("resolve movie %d: %v", tmdbID, err)), nil
	}

	view := presenter.BuildDetail(state.Snapshot(), s.deps.Genres)
	if view.ID != tmdbID {
		return toolError(fmt.Sprintf("resolve movie %d: %v", tmdbID, catalog.ErrSuperseded)), nil
	}
	if derr := state.DetailErr(); derr != nil {
		if errors.Is(derr, tmdb.ErrNotFound) {
			return toolError(fmt.Sprintf("movie %d not found", tmdbID)), nil
		}
		return toolError(fmt.Sprintf("tmdb get movie failed: %v", derr)), nil
	}
	return toolJSON(view)
}

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}
