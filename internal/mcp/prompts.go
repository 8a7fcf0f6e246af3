// ABOUTME: MCP prompt definitions for socrata-mcp
// ABOUTME: Guided workflows for exploring datasets, crime data, and city comparisons
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompt names.
const (
	PromptExploreDataset = "explore-dataset"
	PromptFindCrimeData  = "find-crime-data"
	PromptCompareCities  = "compare-cities"
)

// cityDomains maps well-known locations to their portal.
var cityDomains = map[string]string{
	"chicago":           "data.cityofchicago.org",
	"seattle":           "data.seattle.gov",
	"san francisco":     "data.sfgov.org",
	"montgomery county": "data.montgomerycountymd.gov",
}

type promptDef struct {
	prompt *mcp.Prompt
	render func(args map[string]string) (description, text string)
}

func arg(name, description string, required bool) *mcp.PromptArgument {
	return &mcp.PromptArgument{Name: name, Description: description, Required: required}
}

func prompts() []promptDef {
	return []promptDef{
		{
			prompt: &mcp.Prompt{
				Name:        PromptExploreDataset,
				Description: "Explore a Socrata dataset with guided questions",
				Arguments: []*mcp.PromptArgument{
					arg("domain", "Socrata domain (e.g. data.cityofchicago.org)", true),
					arg("dataset_id", "Dataset ID (4x4 format like 'abcd-1234')", true),
					arg("focus_area", "What aspect to focus on (trends, patterns, anomalies, summary)", false),
				},
			},
			render: exploreDataset,
		},
		{
			prompt: &mcp.Prompt{
				Name:        PromptFindCrimeData,
				Description: "Find and analyze crime datasets across domains",
				Arguments: []*mcp.PromptArgument{
					arg("location", "City or region to search (e.g. Chicago, Seattle)", true),
					arg("crime_type", "Type of crime to focus on (optional)", false),
					arg("time_period", "Time period to analyze (e.g. 2024, last-year)", false),
				},
			},
			render: findCrimeData,
		},
		{
			prompt: &mcp.Prompt{
				Name:        PromptCompareCities,
				Description: "Compare data between multiple cities",
				Arguments: []*mcp.PromptArgument{
					arg("cities", "Comma-separated list of cities to compare", true),
					arg("metric", "What to compare (crime, permits, budget, etc.)", true),
					arg("year", "Year to focus the comparison on", false),
				},
			},
			render: compareCities,
		},
	}
}

// registerPrompts adds the guided prompts to the MCP server.
func (s *Server) registerPrompts() {
	for _, def := range prompts() {
		s.mcpServer.AddPrompt(def.prompt, s.promptHandler(def))
	}
}

func (s *Server) promptHandler(def promptDef) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = map[string]string{}
		}
		for _, a := range def.prompt.Arguments {
			if a.Required && strings.TrimSpace(args[a.Name]) == "" {
				return nil, fmt.Errorf("prompt %s: missing required argument %q", def.prompt.Name, a.Name)
			}
		}

		s.logger.Info("rendering prompt", "prompt", def.prompt.Name)
		description, text := def.render(args)

		result := &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{
				{
					Role: "user",
					Content: &mcp.TextContent{
						Text: text,
					},
				},
			},
		}

		return result, nil
	}
}

func exploreDataset(args map[string]string) (string, string) {
	domain, id := args["domain"], args["dataset_id"]
	focus := args["focus_area"]
	if focus == "" {
		focus = "summary"
	}

	text := fmt.Sprintf(`I want to explore the dataset %[2]s on %[1]s.

Please help me understand this dataset by:

1. First, get the dataset information to understand its structure and contents
2. Show me a sample of the data to see what it looks like
3. Focus on %[3]s - provide insights about this aspect
4. Suggest some interesting questions I could ask about this data

Dataset: %[1]s/%[2]s
Focus: %[3]s

Start by using the get_dataset_info tool to understand the dataset structure.`, domain, id, focus)

	return fmt.Sprintf("Explore dataset %s focusing on %s", id, focus), text
}

func findCrimeData(args map[string]string) (string, string) {
	location := args["location"]
	crimeType := args["crime_type"]
	period := args["time_period"]
	domain := cityDomains[strings.ToLower(strings.TrimSpace(location))]

	where := "across available domains"
	if domain != "" {
		where = "on " + domain
	}
	focus := "Show me the types of crimes available"
	if crimeType != "" {
		focus = "Focus on " + crimeType + " crimes specifically"
	}
	span := "Show me the time range of available data"
	if period != "" {
		span = "Analyze data for " + period
	}

	var b strings.Builder
	fmt.Fprintf(&b, `I want to find and analyze crime data for %s.

Please help me by:

1. Search for crime-related datasets %s
2. Show me the available crime datasets and their details
3. %s
4. %s
5. Provide insights about crime patterns and trends

Location: %s
`, location, where, focus, span, location)
	b.WriteString(optionalLine("Crime Type: ", crimeType))
	b.WriteString(optionalLine("Time Period: ", period))
	fmt.Fprintf(&b, "\nStart by searching for datasets with the term \"%s\".", strings.TrimSpace("crime "+crimeType))

	return "Find and analyze crime data for " + location, b.String()
}

func compareCities(args map[string]string) (string, string) {
	cities, metric, year := args["cities"], args["metric"], args["year"]

	focus := "Use the most recent complete year of data"
	if year != "" {
		focus = "Focus on data from " + year
	}

	var b strings.Builder
	fmt.Fprintf(&b, `I want to compare %[1]s data between these cities: %[2]s.

Please help me by:

1. For each city, search for datasets related to %[1]s
2. Identify comparable datasets across the cities
3. Show me the data structure and what metrics are available
4. %[3]s
5. Create a comparison showing differences and similarities
6. Provide insights about what the differences might mean

Cities to compare: %[2]s
Metric: %[1]s
`, metric, cities, focus)
	b.WriteString(optionalLine("Year: ", year))
	fmt.Fprintf(&b, "\nStart by searching for %s datasets in each city's open data portal.", metric)

	return fmt.Sprintf("Compare %s between %s", metric, cities), b.String()
}

// optionalLine renders "label value\n", or a bare newline when value is empty.
func optionalLine(label, value string) string {
	if value == "" {
		return "\n"
	}
	return label + value + "\n"
}
