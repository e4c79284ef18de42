// ABOUTME: MCP resource implementations for fitlog.
// ABOUTME: Provides fitlog://today and fitlog://progress resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	todayURI    = "fitlog://today"
	progressURI = "fitlog://progress"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today",
		Description: "Today's calories, protein, targets and workout",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         progressURI,
		Name:        "Weight Progress",
		Description: "Every weigh-in in date order with the overall trend",
		MIMEType:    "application/json",
	}, s.handleProgressResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	sum, err := s.agg.Today(ctx, userID, models.DateKey(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to read today: %w", err)
	}
	return jsonResource(todayURI, sum)
}

func (s *Server) handleProgressResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	series, err := s.reader.Series(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return jsonResource(progressURI, newProgressOutput(series))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
