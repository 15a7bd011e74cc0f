package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/choplin/scorerelay/internal/application"
	"github.com/choplin/scorerelay/internal/scan"
)

// Server exposes the relay's pass and source inspection as MCP tools.
type Server struct {
	server *mcp.Server
	relay  *application.Relay
}

// NewServer creates an MCP server around an already wired relay.
func NewServer(relay *application.Relay, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "scorerelay",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		relay:  relay,
	}

	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scores_scan",
		Description: "Run one scan pass over every configured source and upload new scores",
	}, s.handleScan)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scores_sources",
		Description: "List configured score sources and whether their directories are reachable",
	}, s.handleSources)
}

type ScanInput struct{}

type ScanOutput struct {
	PassID     string         `json:"passId"`
	StartedAt  string         `json:"startedAt"`
	DurationMS int64          `json:"durationMs"`
	Sources    []scan.Summary `json:"sources"`
}

type SourcesInput struct{}

type SourcesOutput struct {
	Sources []application.SourceStatus `json:"sources"`
}

func (s *Server) handleScan(ctx context.Context, _ *mcp.CallToolRequest, _ ScanInput) (*mcp.CallToolResult, ScanOutput, error) {
	if s.relay == nil || s.relay.Scheduler == nil {
		return nil, ScanOutput{}, fmt.Errorf("relay is not configured")
	}

	rep := s.relay.Scheduler.RunOnce(ctx)
	return nil, ScanOutput{
		PassID:     rep.ID,
		StartedAt:  rep.StartedAt.UTC().Format(time.RFC3339),
		DurationMS: rep.FinishedAt.Sub(rep.StartedAt).Milliseconds(),
		Sources:    rep.Summaries(),
	}, nil
}

func (s *Server) handleSources(_ context.Context, _ *mcp.CallToolRequest, _ SourcesInput) (*mcp.CallToolResult, SourcesOutput, error) {
	if s.relay == nil || s.relay.Config == nil {
		return nil, SourcesOutput{}, fmt.Errorf("relay is not configured")
	}
	return nil, SourcesOutput{Sources: application.InspectSources(s.relay.Config)}, nil
}
