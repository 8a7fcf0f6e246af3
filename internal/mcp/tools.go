// ABOUTME: MCP tool implementations for socrata-mcp
// ABOUTME: Declarative tool table, argument handling, and error rendering
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/analysis"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

// Tool names.
const (
	ToolQueryDataset         = "query_dataset"
	ToolSearchDatasets       = "search_datasets"
	ToolGetDatasetInfo       = "get_dataset_info"
	ToolNaturalLanguageQuery = "natural_language_query"
	ToolAnalyzeData          = "analyze_data"
)

// maxSearchResults caps search_datasets regardless of the requested limit.
const maxSearchResults = 50

const searchTimeoutMessage = "Error: Search request timed out. Try with a more specific query."

// popularDatasets is offered when a search fails outright.
var popularDatasets = []map[string]string{
	{"id": "ijzp-q8t2", "name": "Crimes - 2001 to Present", "domain": "data.cityofchicago.org"},
	{"id": "wrvz-psew", "name": "Police Stations", "domain": "data.cityofchicago.org"},
}

var domainExamples = examples("data.cityofchicago.org", "data.seattle.gov", "data.sfgov.org")

// toolDef pairs a tool descriptor with the function that runs it. run
// returns the text to show; an error is rendered by dispatch.
type toolDef struct {
	tool *mcp.Tool
	run  func(ctx context.Context, raw json.RawMessage) (string, error)
}

// newTool builds a tool whose arguments decode into a copy of defaults.
func newTool[T any](name, description string, defaults T, decorate map[string]func(*jsonschema.Schema), run func(context.Context, *T) (string, error)) toolDef {
	return toolDef{
		tool: &mcp.Tool{
			Name:        name,
			Description: description,
			InputSchema: schemaFor[T](decorate),
		},
		run: func(ctx context.Context, raw json.RawMessage) (string, error) {
			args := defaults
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}
			return run(ctx, &args)
		},
	}
}

func (s *Server) tools() []toolDef {
	return []toolDef{
		newTool(ToolQueryDataset,
			"Execute SoQL (Socrata Query Language) queries on datasets to retrieve specific data",
			queryDatasetArgs{Limit: socrata.DefaultQueryLimit, Format: socrata.FormatJSON},
			map[string]func(*jsonschema.Schema){
				"domain":     domainExamples,
				"dataset_id": both(pattern(datasetIDPattern), examples("ijzp-q8t2")),
				"query": examples(
					"SELECT * LIMIT 100",
					"SELECT date, count(*) GROUP BY date ORDER BY date DESC",
					"SELECT * WHERE date >= '2024-01-01' AND primary_type = 'THEFT'",
				),
				"limit":  bounds(1, 50000, socrata.DefaultQueryLimit),
				"format": enum(socrata.FormatJSON, socrata.Formats()...),
			},
			s.queryDataset),
		newTool(ToolSearchDatasets,
			"Search and discover datasets on Socrata domains using keywords",
			searchDatasetsArgs{Limit: socrata.DefaultSearchLimit},
			map[string]func(*jsonschema.Schema){
				"domain": domainExamples,
				"query":  examples("crime", "police incidents", "building permits", "budget"),
				"limit":  bounds(1, 100, socrata.DefaultSearchLimit),
			},
			s.searchDatasets),
		newTool(ToolGetDatasetInfo,
			"Get comprehensive metadata, schema, and column information for a specific dataset",
			datasetInfoArgs{},
			map[string]func(*jsonschema.Schema){
				"domain":     domainExamples,
				"dataset_id": both(pattern(datasetIDPattern), examples("ijzp-q8t2")),
			},
			s.getDatasetInfo),
		newTool(ToolNaturalLanguageQuery,
			"Convert natural language questions into executable SoQL queries and optionally run them",
			naturalLanguageArgs{Execute: true},
			map[string]func(*jsonschema.Schema){
				"domain":     domainExamples,
				"dataset_id": pattern(datasetIDPattern),
				"question":   examples("How many crimes happened last year?", "What is the average salary?"),
				"execute":    defaultBool(true),
			},
			s.naturalLanguageQuery),
		newTool(ToolAnalyzeData,
			"Perform statistical analysis and generate insights from query results",
			analyzeDataArgs{AnalysisType: string(analysis.Summary)},
			map[string]func(*jsonschema.Schema){
				"domain":        domainExamples,
				"dataset_id":    pattern(datasetIDPattern),
				"query":         examples("SELECT * WHERE date >= '2024-01-01'", "SELECT primary_type, count(*) GROUP BY primary_type"),
				"analysis_type": enum(string(analysis.Summary), analysis.Kinds()...),
			},
			s.analyzeData),
	}
}

// registerTools adds all MCP tools to the server.
func (s *Server) registerTools() {
	for _, def := range s.tools() {
		s.mcpServer.AddTool(def.tool, s.dispatch(def))
	}
}

// dispatch wraps a tool with call logging, panic recovery, and error
// rendering. No tool failure escapes as a protocol error.
func (s *Server) dispatch(def toolDef) mcp.ToolHandler {
	name := def.tool.Name
	return func(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		callID := uuid.NewString()
		logger := s.logger.With("call_id", callID, "tool", name)
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("tool panicked", "panic", r, "duration", time.Since(start))
				result, err = errorResult(name, fmt.Errorf("internal error: %v", r)), nil
			}
		}()

		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		logger.Info("tool call", "arguments", string(raw))

		text, runErr := def.run(ctx, raw)

		var argErr *argError
		switch {
		case runErr == nil:
			logger.Info("tool done", "duration", time.Since(start), "bytes", len(text))
			return textResult(text), nil
		case errors.As(runErr, &argErr):
			logger.Warn("invalid arguments", "duration", time.Since(start), "error", runErr)
			return textResult(argErr.msg), nil
		default:
			logger.Error("tool failed", "duration", time.Since(start), "error", runErr)
			return errorResult(name, runErr), nil
		}
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(tool string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error executing %s: %v", tool, err)}},
		IsError: true,
	}
}

func (s *Server) queryDataset(ctx context.Context, args *queryDatasetArgs) (string, error) {
	result, err := s.datasets.Query(ctx, args.Domain, args.DatasetID, args.Query, args.Limit, args.Format)
	if err != nil {
		return "", err
	}
	return s.guard.query(result)
}

// searchDatasets runs under its own deadline. Failures are answered with
// guidance text rather than an error result.
func (s *Server) searchDatasets(ctx context.Context, args *searchDatasetsArgs) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	limit := min(args.Limit, maxSearchResults)
	s.logger.Info("searching datasets", "domain", args.Domain, "query", args.Query, "limit", limit)

	datasets, err := s.datasets.SearchDatasets(ctx, args.Domain, args.Query, limit)
	switch {
	case socrata.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		s.logger.Error("search timed out", "timeout", s.searchTimeout)
		return searchTimeoutMessage, nil
	case err != nil:
		s.logger.Error("search failed", "error", err)
		return marshal(map[string]any{
			"error":            fmt.Sprintf("Search failed: %v", err),
			"suggestion":       "Try a more specific search term or check the domain name",
			"popular_datasets": popularDatasets,
		})
	}

	s.logger.Info("search returned", "results", len(datasets))
	return list(s.guard, datasets)
}

func (s *Server) getDatasetInfo(ctx context.Context, args *datasetInfoArgs) (string, error) {
	info, err := s.datasets.GetDatasetInfo(ctx, args.Domain, args.DatasetID)
	if err != nil {
		return "", err
	}
	return s.guard.value(info)
}

func (s *Server) naturalLanguageQuery(ctx context.Context, args *naturalLanguageArgs) (string, error) {
	result, err := s.datasets.NaturalLanguageQuery(ctx, args.Domain, args.DatasetID, args.Question, args.Execute)
	if err != nil {
		return "", err
	}
	return s.guard.naturalLanguage(result)
}

func (s *Server) analyzeData(ctx context.Context, args *analyzeDataArgs) (string, error) {
	kind, err := analysis.ParseKind(args.AnalysisType)
	if err != nil {
		return "", err
	}
	report, err := s.datasets.AnalyzeData(ctx, args.Domain, args.DatasetID, args.Query, kind)
	if err != nil {
		return "", err
	}
	return s.guard.value(report)
}
