// ABOUTME: MCP resource implementations for socrata-mcp
// ABOUTME: Static reference documents plus templated dataset, catalog, and schema views
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// Resource URIs and templates.
const (
	URIPopularDomains = "socrata://popular-domains"
	URIExampleQueries = "socrata://example-queries"

	TemplateDataset        = "socrata://dataset/{domain}/{dataset_id}"
	TemplateDomainDatasets = "socrata://domain/{domain}/datasets"
	TemplateSchema         = "socrata://schema/{domain}/{dataset_id}"
)

// domainCatalogLimit caps the datasets listed by the domain template.
const domainCatalogLimit = 50

const jsonMIME = "application/json"

type popularDomain struct {
	Domain      string   `json:"domain"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

var popularDomains = map[string][]popularDomain{
	"popular_domains": {
		{
			Domain:      "data.cityofchicago.org",
			Name:        "City of Chicago",
			Description: "Chicago's official open data portal",
			Categories:  []string{"crime", "transportation", "permits", "budget"},
		},
		{
			Domain:      "data.seattle.gov",
			Name:        "City of Seattle",
			Description: "Seattle's open data portal",
			Categories:  []string{"crime", "transportation", "permits", "environment"},
		},
		{
			Domain:      "data.sfgov.org",
			Name:        "City of San Francisco",
			Description: "San Francisco's open data portal",
			Categories:  []string{"crime", "transportation", "housing", "environment"},
		},
		{
			Domain:      "data.montgomerycountymd.gov",
			Name:        "Montgomery County, MD",
			Description: "Montgomery County Maryland open data",
			Categories:  []string{"crime", "health", "permits", "budget"},
		},
	},
}

type exampleQuery struct {
	Description string `json:"description"`
	Query       string `json:"query"`
	UseCase     string `json:"use_case"`
}

var exampleQueries = struct {
	ImportantNote  string         `json:"important_note"`
	ExampleQueries []exampleQuery `json:"example_queries"`
}{
	ImportantNote: "Do not include FROM clauses in SoQL queries. The dataset is implicit from the API endpoint.",
	ExampleQueries: []exampleQuery{
		{"Get all records with limit", "SELECT * LIMIT 100", "Basic data exploration"},
		{"Filter by date range", "SELECT * WHERE date >= '2024-01-01' AND date <= '2024-12-31'", "Time-based filtering"},
		{"Count records by category", "SELECT category, COUNT(*) AS count GROUP BY category", "Aggregation and grouping"},
		{"Time series analysis", "SELECT year, COUNT(*) as total WHERE year >= 2020 GROUP BY year ORDER BY year", "Yearly aggregation and trends"},
		{"Search text fields", "SELECT * WHERE description LIKE '%crime%'", "Text search"},
		{"Geographic filtering", "SELECT * WHERE within_circle(location, 41.8781, -87.6298, 1000)", "Location-based queries"},
	},
}

// templateHandler resolves the variables of a matched URI into a document.
type templateHandler func(ctx context.Context, vars func(string) string) (any, error)

// registerResources adds all MCP resources to the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         URIPopularDomains,
		Name:        "Popular Socrata Domains",
		Description: "List of popular Socrata domains and their information",
		MIMEType:    jsonMIME,
	}, s.staticResource(popularDomains))

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         URIExampleQueries,
		Name:        "Example SoQL Queries",
		Description: "Common SoQL query patterns and examples",
		MIMEType:    jsonMIME,
	}, s.staticResource(exampleQueries))

	s.addTemplate(TemplateDataset, "dataset-info",
		"Get detailed information about a specific dataset", s.readDataset)
	s.addTemplate(TemplateDomainDatasets, "domain-datasets",
		"List all datasets available on a Socrata domain", s.readDomainDatasets)
	s.addTemplate(TemplateSchema, "dataset-schema",
		"Get the schema/column information for a dataset", s.readSchema)
}

func (s *Server) staticResource(doc any) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		s.logger.Info("reading resource", "uri", req.Params.URI)
		return jsonResource(req.Params.URI, doc), nil
	}
}

func (s *Server) addTemplate(tmpl, name, description string, handle templateHandler) {
	parsed := uritemplate.MustNew(tmpl)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: tmpl,
		Name:        name,
		Description: description,
		MIMEType:    jsonMIME,
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		s.logger.Info("reading resource", "uri", uri, "template", name)

		values := parsed.Match(uri)
		if values == nil {
			return jsonResource(uri, errorDoc(fmt.Errorf("invalid URI format for %s: %s", name, uri))), nil
		}
		vars := func(key string) string { return values.Get(key).String() }

		doc, err := handle(ctx, vars)
		if err != nil {
			s.logger.Error("resource failed", "uri", uri, "error", err)
			return jsonResource(uri, errorDoc(err)), nil
		}
		return jsonResource(uri, doc), nil
	})
}

func (s *Server) readDataset(ctx context.Context, vars func(string) string) (any, error) {
	return s.datasets.GetDatasetInfo(ctx, vars("domain"), vars("dataset_id"))
}

func (s *Server) readDomainDatasets(ctx context.Context, vars func(string) string) (any, error) {
	datasets, err := s.datasets.SearchDatasets(ctx, vars("domain"), "*", domainCatalogLimit)
	if err != nil {
		return nil, err
	}
	return map[string]any{"datasets": datasets}, nil
}

func (s *Server) readSchema(ctx context.Context, vars func(string) string) (any, error) {
	id := vars("dataset_id")
	info, err := s.datasets.GetDatasetInfo(ctx, vars("domain"), id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"dataset_id": id,
		"name":       info.Name,
		"columns":    info.Columns,
	}, nil
}

func errorDoc(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func jsonResource(uri string, doc any) *mcp.ReadResourceResult {
	text, err := marshal(doc)
	if err != nil {
		text = fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonMIME,
				Text:     text,
			},
		},
	}
}
