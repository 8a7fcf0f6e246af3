// ABOUTME: SoQL text cleanup applied before queries reach the API
// ABOUTME: Strips FROM clauses, collapses whitespace, and appends limits
package soql

import (
	"fmt"
	"regexp"
	"strings"
)

// anyFrom matches a FROM clause naming any table. The resource endpoint
// already scopes the dataset, so such clauses are always redundant.
var anyFrom = regexp.MustCompile(`(?i)\bFROM\s+\w+[-\w]*\b`)

// Clean removes FROM clauses referencing datasetID (optionally back-ticked)
// or any other table name, then collapses runs of whitespace.
func Clean(query, datasetID string) string {
	if datasetID != "" {
		id := regexp.QuoteMeta(datasetID)
		own := regexp.MustCompile("(?i)\\bFROM\\s+(`" + id + "`|" + id + "\\b)")
		query = own.ReplaceAllString(query, "")
	}
	query = anyFrom.ReplaceAllString(query, "")
	return strings.Join(strings.Fields(query), " ")
}

// HasLimit reports whether the query already carries a limit, either as a
// LIMIT clause or a $limit parameter.
func HasLimit(query string) bool {
	return strings.Contains(strings.ToLower(query), "limit")
}

// WithLimit appends LIMIT n unless the query already limits itself. An empty
// query becomes a full select.
func WithLimit(query string, limit int) string {
	if HasLimit(query) {
		return query
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Sprintf("SELECT * LIMIT %d", limit)
	}
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}
