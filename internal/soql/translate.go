// ABOUTME: Keyword-driven translation of questions into SoQL
// ABOUTME: Best-effort heuristic over column metadata, not a parser
package soql

import "strings"

// DefaultQuery is returned when no keyword applies.
const DefaultQuery = "SELECT * LIMIT 100"

// Column is the slice of dataset metadata the translator looks at.
type Column struct {
	Name     string
	DataType string
}

// numericTypes are the Socrata data type tags that support aggregation.
var numericTypes = map[string]bool{
	"number":  true,
	"money":   true,
	"percent": true,
}

// IsNumeric reports whether a Socrata data type tag is numeric.
func IsNumeric(dataType string) bool {
	return numericTypes[strings.ToLower(dataType)]
}

type rule struct {
	keywords  []string
	aggregate string // empty means no column is needed
}

// rules are checked in order; the first rule whose keyword matches decides.
var rules = []rule{
	{keywords: []string{"count", "how many"}},
	{keywords: []string{"average", "mean"}, aggregate: "AVG"},
	{keywords: []string{"max", "maximum"}, aggregate: "MAX"},
	{keywords: []string{"min", "minimum"}, aggregate: "MIN"},
}

// Translate maps a free-text question onto a SoQL fragment. Aggregates use
// the first numeric column; without one the default query is returned.
func Translate(columns []Column, question string) string {
	q := strings.ToLower(question)

	for _, r := range rules {
		if !containsAny(q, r.keywords) {
			continue
		}
		if r.aggregate == "" {
			return "SELECT COUNT(*)"
		}
		col, ok := firstNumeric(columns)
		if !ok {
			return DefaultQuery
		}
		return "SELECT " + r.aggregate + "(" + col + ")"
	}

	return DefaultQuery
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstNumeric(columns []Column) (string, bool) {
	for _, c := range columns {
		if IsNumeric(c.DataType) {
			return c.Name, true
		}
	}
	return "", false
}
