// ABOUTME: Response-size guard for tool output
// ABOUTME: Truncates oversized list results and raw text before they reach the client
package mcp

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

// guard caps serialized tool output at maxBytes. List results over the cap
// keep only their first keep items.
type guard struct {
	maxBytes int
	keep     int
}

type truncatedList[T any] struct {
	Note    string `json:"note"`
	Results []T    `json:"results"`
}

type truncatedQuery struct {
	Note string `json:"note"`
	*socrata.QueryResult
}

type truncatedNL struct {
	Note string `json:"note"`
	*socrata.NLQueryResult
}

func (g guard) over(text string) bool {
	return len(text) > g.maxBytes
}

func (g guard) note(size, total int) string {
	shown := min(g.keep, total)
	return fmt.Sprintf("Response truncated (%s exceeds the %s limit) - showing first %d of %d results. Use smaller limit for full results.",
		humanize.Bytes(uint64(size)), humanize.Bytes(uint64(g.maxBytes)), shown, total)
}

// text cuts raw text at the byte limit on a rune boundary and appends a note.
func (g guard) text(s string) string {
	if !g.over(s) {
		return s
	}
	cut := g.maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("\n\n[Response truncated (%s exceeds the %s limit). Use smaller limit for full results.]",
		humanize.Bytes(uint64(len(s))), humanize.Bytes(uint64(g.maxBytes)))
}

// value renders v as indented JSON, cutting it as raw text when too large.
func (g guard) value(v any) (string, error) {
	text, err := marshal(v)
	if err != nil {
		return "", err
	}
	return g.text(text), nil
}

// list renders items, keeping the first g.keep when the whole list is too large.
func list[T any](g guard, items []T) (string, error) {
	text, err := marshal(items)
	if err != nil || !g.over(text) {
		return text, err
	}
	return marshal(truncatedList[T]{
		Note:    g.note(len(text), len(items)),
		Results: head(items, g.keep),
	})
}

func (g guard) query(r *socrata.QueryResult) (string, error) {
	if r.IsRaw() {
		return g.text(r.Raw), nil
	}
	text, err := marshal(r)
	if err != nil || !g.over(text) {
		return text, err
	}
	cp := *r
	cp.Data = head(r.Data, g.keep)
	return marshal(truncatedQuery{Note: g.note(len(text), len(r.Data)), QueryResult: &cp})
}

func (g guard) naturalLanguage(r *socrata.NLQueryResult) (string, error) {
	text, err := marshal(r)
	if err != nil || !g.over(text) {
		return text, err
	}
	if r.Results == nil {
		return g.text(text), nil
	}
	results := *r.Results
	results.Data = head(r.Results.Data, g.keep)
	cp := *r
	cp.Results = &results
	return marshal(truncatedNL{Note: g.note(len(text), len(r.Results.Data)), NLQueryResult: &cp})
}

func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
