// Package mcp implements the Model Context Protocol server for modaudit.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/modaudit/internal/audit"
	"github.com/ajitpratap0/modaudit/internal/models"
)

// noActor marks an absent "actor" argument; real actor numbers are never negative.
const noActor = -1

// Auditor is the engine surface the tools need.
type Auditor interface {
	Tick()
	Result(handle string) (*models.ClassificationResult, error)
	ResultByActor(actor int) (*models.ClassificationResult, error)
	Flagged() []*models.ClassificationResult
	RoomSummary() models.RoomSummary
	Summary() string
}

// Dataset reports the state of the reference tables.
type Dataset interface {
	Loaded() bool
	Loading() bool
	Counts() models.DatasetCounts
}

// Server wraps an MCPServer with modaudit dependencies.
type Server struct {
	mcp     *mcpserver.MCPServer
	auditor Auditor
	dataset Dataset
	logger  *slog.Logger
}

// NewServer creates a new MCP server. If aud or ds are nil, the corresponding
// tool calls return an error response instead of panicking.
func NewServer(aud Auditor, ds Dataset, version string, logger *slog.Logger) *Server {
	s := &Server{
		auditor: aud,
		dataset: ds,
		logger:  logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"modaudit",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildSummaryTool(), s.handleSummary)
	mcpSrv.AddTool(buildFlaggedTool(), s.handleFlagged)
	mcpSrv.AddTool(buildLookupTool(), s.handleLookup)
	mcpSrv.AddTool(buildDatasetStatusTool(), s.handleDatasetStatus)
	mcpSrv.AddTool(buildClassifyNowTool(), s.handleClassifyNow)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleSummary is the exported handler for the "summary" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleSummary(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSummary(ctx, req)
}

// HandleFlagged is the exported handler for the "flagged" tool.
func (s *Server) HandleFlagged(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleFlagged(ctx, req)
}

// HandleLookup is the exported handler for the "lookup" tool.
func (s *Server) HandleLookup(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleLookup(ctx, req)
}

// HandleDatasetStatus is the exported handler for the "dataset_status" tool.
func (s *Server) HandleDatasetStatus(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleDatasetStatus(ctx, req)
}

// HandleClassifyNow is the exported handler for the "classify_now" tool.
func (s *Server) HandleClassifyNow(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleClassifyNow(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildSummaryTool() mcpgo.Tool {
	return mcpgo.NewTool("summary",
		mcpgo.WithDescription("Summarize the current session: participant count, how many carry entries, how many carry disallowed entries."),
	)
}

func buildFlaggedTool() mcpgo.Tool {
	return mcpgo.NewTool("flagged",
		mcpgo.WithDescription("List cached participants whose metadata contains disallowed entries."),
	)
}

func buildLookupTool() mcpgo.Tool {
	return mcpgo.NewTool("lookup",
		mcpgo.WithDescription("Return the cached classification for one participant, by handle or by actor number."),
		mcpgo.WithString("handle",
			mcpgo.Description("Participant handle"),
		),
		mcpgo.WithNumber("actor",
			mcpgo.Description("Actor number within the session (used when handle is empty)"),
		),
	)
}

func buildDatasetStatusTool() mcpgo.Tool {
	return mcpgo.NewTool("dataset_status",
		mcpgo.WithDescription("Report whether the reference dataset is loaded, where it came from and how many entries it holds."),
	)
}

func buildClassifyNowTool() mcpgo.Tool {
	return mcpgo.NewTool("classify_now",
		mcpgo.WithDescription("Run one classification pass over the session immediately and return the summary."),
	)
}

// --- handlers ---

// summaryResult is the JSON shape returned by summary and classify_now.
type summaryResult struct {
	Summary string `json:"summary"`
	models.RoomSummary
}

func (s *Server) handleSummary(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.auditor == nil {
		return mcpgo.NewToolResultError("audit engine is unavailable"), nil
	}
	return toolResultJSON(summaryResult{Summary: s.auditor.Summary(), RoomSummary: s.auditor.RoomSummary()})
}

func (s *Server) handleFlagged(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.auditor == nil {
		return mcpgo.NewToolResultError("audit engine is unavailable"), nil
	}
	flagged := s.auditor.Flagged()
	if flagged == nil {
		flagged = []*models.ClassificationResult{}
	}
	return toolResultJSON(map[string]any{"count": len(flagged), "results": flagged})
}

func (s *Server) handleLookup(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.auditor == nil {
		return mcpgo.NewToolResultError("audit engine is unavailable"), nil
	}

	handle := req.GetString("handle", "")
	actor := req.GetInt("actor", noActor)

	var (
		res *models.ClassificationResult
		err error
	)
	switch {
	case handle != "":
		res, err = s.auditor.Result(handle)
	case actor > noActor:
		res, err = s.auditor.ResultByActor(actor)
	default:
		return mcpgo.NewToolResultError("either handle or actor is required"), nil
	}
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return mcpgo.NewToolResultErrorf("no cached result: %s", err.Error()), nil
		}
		return mcpgo.NewToolResultErrorf("lookup failed: %s", err.Error()), nil
	}

	return toolResultJSON(map[string]any{
		"result":      res,
		"status":      res.Status(),
		"status_text": res.StatusText(),
	})
}

// datasetStatusResult is the JSON shape returned by dataset_status.
type datasetStatusResult struct {
	Loaded  bool `json:"loaded"`
	Loading bool `json:"loading"`
	models.DatasetCounts
}

func (s *Server) handleDatasetStatus(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.dataset == nil {
		return mcpgo.NewToolResultError("dataset is unavailable"), nil
	}
	return toolResultJSON(datasetStatusResult{
		Loaded:        s.dataset.Loaded(),
		Loading:       s.dataset.Loading(),
		DatasetCounts: s.dataset.Counts(),
	})
}

func (s *Server) handleClassifyNow(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.auditor == nil {
		return mcpgo.NewToolResultError("audit engine is unavailable"), nil
	}
	s.auditor.Tick()
	s.logger.Debug("classification pass requested via mcp")
	return toolResultJSON(summaryResult{Summary: s.auditor.Summary(), RoomSummary: s.auditor.RoomSummary()})
}
