// ABOUTME: MCP server setup for the fitlog tracker.
// ABOUTME: Wraps the MCP server with the day aggregator, progress reader, coach and session.
package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/generate"
	"github.com/harperreed/fitlog/internal/identity"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Deps are the services the tools call into.
type Deps struct {
	Aggregator *dailylog.Aggregator
	Reader     *progress.Reader
	Coach      *generate.Coach
	Session    *identity.Session
	Logger     *log.Logger
	Now        func() time.Time
}

// Server wraps the MCP server with fitlog services.
type Server struct {
	mcpServer *mcp.Server
	agg       *dailylog.Aggregator
	reader    *progress.Reader
	coach     *generate.Coach
	session   *identity.Session
	logger    *log.Logger
	now       func() time.Time
}

// NewServer creates a new MCP server over the given services.
func NewServer(deps Deps) (*Server, error) {
	if deps.Aggregator == nil || deps.Reader == nil || deps.Session == nil {
		return nil, errors.New("mcp server needs an aggregator, a progress reader and a session")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fitlog",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		agg:       deps.Aggregator,
		reader:    deps.Reader,
		coach:     deps.Coach,
		session:   deps.Session,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) userID() (string, error) {
	id, ok := s.session.CurrentUserID()
	if !ok {
		return "", identity.ErrNotSignedIn
	}
	return id, nil
}

// day resolves an optional date argument, defaulting to today.
func (s *Server) day(date string) (string, error) {
	if date == "" {
		return models.DateKey(s.now()), nil
	}
	return models.ParseDateKey(date)
}

func (s *Server) requireCoach() error {
	if s.coach == nil {
		return errors.New("no completion provider configured")
	}
	return nil
}
