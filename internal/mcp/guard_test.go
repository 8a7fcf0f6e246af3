// ABOUTME: Tests for the response-size guard
// ABOUTME: Covers list truncation, raw text cuts, and pass-through below the cap
package mcp

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

func TestGuardListPassThrough(t *testing.T) {
	g := guard{maxBytes: 50000, keep: 5}
	items := []socrata.DatasetSummary{{ID: "abcd-1234"}}

	text, err := list(g, items)
	require.NoError(t, err)

	var got []socrata.DatasetSummary
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Len(t, got, 1)
}

func TestGuardListTruncates(t *testing.T) {
	g := guard{maxBytes: 200, keep: 5}
	items := make([]socrata.DatasetSummary, 12)
	for i := range items {
		items[i] = socrata.DatasetSummary{ID: "abcd-1234", Description: strings.Repeat("x", 50)}
	}

	text, err := list(g, items)
	require.NoError(t, err)

	var got truncatedList[socrata.DatasetSummary]
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Len(t, got.Results, 5)
	assert.True(t, strings.HasPrefix(got.Note, "Response truncated ("), got.Note)
	assert.True(t, strings.HasSuffix(got.Note, "showing first 5 of 12 results. Use smaller limit for full results."), got.Note)
}

func TestGuardText(t *testing.T) {
	g := guard{maxBytes: 10, keep: 5}

	assert.Equal(t, "short", g.text("short"))

	cut := g.text(strings.Repeat("a", 25))
	assert.True(t, strings.HasPrefix(cut, strings.Repeat("a", 10)+"\n\n[Response truncated"), cut)

	// A multi-byte rune straddling the limit is dropped whole.
	cut = g.text(strings.Repeat("a", 9) + "é" + "tail")
	assert.True(t, strings.HasPrefix(cut, strings.Repeat("a", 9)+"\n\n"), cut)
}

func TestGuardQueryRaw(t *testing.T) {
	g := guard{maxBytes: 8, keep: 5}
	text, err := g.query(&socrata.QueryResult{Format: socrata.FormatCSV, Raw: "a,b\n1,2\n3,4\n"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "a,b\n1,2\n"), text)
	assert.Contains(t, text, "Response truncated")
}

func TestGuardNaturalLanguage(t *testing.T) {
	g := guard{maxBytes: 300, keep: 1}
	rows := make([]map[string]any, 10)
	for i := range rows {
		rows[i] = map[string]any{"beat": strings.Repeat("9", 40)}
	}
	r := &socrata.NLQueryResult{
		Question:       "how many",
		GeneratedQuery: "SELECT COUNT(*)",
		Results:        &socrata.QueryResult{Data: rows, TotalRows: 10, Format: socrata.FormatJSON},
	}

	text, err := g.naturalLanguage(r)
	require.NoError(t, err)

	var got struct {
		Note    string               `json:"note"`
		Results *socrata.QueryResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Contains(t, got.Note, "showing first 1 of 10 results")
	assert.Len(t, got.Results.Data, 1)
	assert.Len(t, r.Results.Data, 10, "input left untouched")
}
