// ABOUTME: Descriptive statistics over query result rows
// ABOUTME: Summary, time-column detection, correlations, and IQR outliers
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Kind selects the analysis to run.
type Kind string

// Supported analysis kinds.
const (
	Summary      Kind = "summary"
	Trends       Kind = "trends"
	Correlations Kind = "correlations"
	Anomalies    Kind = "anomalies"
)

// NoDataMessage is reported when the query returned no rows.
const NoDataMessage = "No data returned from query"

const (
	// summaryColumns caps how many columns of each kind the summary describes.
	summaryColumns = 3

	correlationThreshold = 0.7
	iqrFactor            = 1.5

	// nan is the cell marker gota reads as a missing value.
	nan = "NaN"
)

// Kinds lists the supported kinds in display order.
func Kinds() []string {
	return []string{string(Summary), string(Trends), string(Correlations), string(Anomalies)}
}

// ParseKind validates s; empty selects Summary.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Summary, nil
	case Summary, Trends, Correlations, Anomalies:
		return k, nil
	default:
		return "", fmt.Errorf("unknown analysis type %q: want one of %s", s, strings.Join(Kinds(), ", "))
	}
}

// Shape is the size of the analysed table.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Report is the outcome of Analyze.
type Report struct {
	AnalysisType Kind              `json:"analysis_type"`
	Message      string            `json:"message,omitempty"`
	DataShape    *Shape            `json:"data_shape,omitempty"`
	Insights     []string          `json:"insights"`
	ColumnTypes  map[string]string `json:"column_types,omitempty"`
}

// Analyze loads rows into a dataframe and runs the requested analysis.
func Analyze(rows []map[string]any, kind Kind) (*Report, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = Summary
	}

	if len(rows) == 0 {
		return &Report{
			AnalysisType: kind,
			Message:      NoDataMessage,
			Insights:     []string{},
		}, nil
	}

	t, err := newTable(rows)
	if err != nil {
		return nil, err
	}

	var insights []string
	switch kind {
	case Summary:
		insights = t.summary()
	case Trends:
		insights = t.trends()
	case Correlations:
		insights = t.correlations()
	case Anomalies:
		insights = t.anomalies()
	}

	return &Report{
		AnalysisType: kind,
		DataShape:    &Shape{Rows: t.df.Nrow(), Columns: t.df.Ncol()},
		Insights:     insights,
		ColumnTypes:  t.columnTypes(),
	}, nil
}

// table wraps a dataframe with the column partitions every analysis needs.
type table struct {
	df      dataframe.DataFrame
	numeric []string
	text    []string
}

func newTable(rows []map[string]any) (*table, error) {
	names := columnNames(rows)

	maps := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		m := make(map[string]interface{}, len(names))
		for _, name := range names {
			m[name] = cell(row[name])
		}
		maps[i] = m
	}

	df := dataframe.LoadMaps(maps, dataframe.DetectTypes(true))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to build dataframe: %w", df.Err)
	}

	t := &table{df: df}
	for _, name := range df.Names() {
		switch df.Col(name).Type() {
		case series.Int, series.Float:
			t.numeric = append(t.numeric, name)
		case series.String:
			t.text = append(t.text, name)
		}
	}
	return t, nil
}

// columnNames is the sorted union of keys across rows; Socrata omits null
// fields, so rows are not guaranteed to share a key set.
func columnNames(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// cell renders a decoded JSON value the way gota expects to parse it.
func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return nan
	case string:
		if strings.TrimSpace(val) == "" {
			return nan
		}
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func (t *table) columnTypes() map[string]string {
	types := make(map[string]string, t.df.Ncol())
	for _, name := range t.df.Names() {
		types[name] = string(t.df.Col(name).Type())
	}
	return types
}

// values returns the non-missing numeric values of a column.
func (t *table) values(name string) []float64 {
	raw := t.df.Col(name).Float()
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// present returns the non-missing string values of a column.
func (t *table) present(name string) []string {
	var out []string
	for _, r := range t.df.Col(name).Records() {
		if r != nan {
			out = append(out, r)
		}
	}
	return out
}

func (t *table) summary() []string {
	insights := []string{
		fmt.Sprintf("Dataset contains %d rows and %d columns", t.df.Nrow(), t.df.Ncol()),
	}

	if len(t.numeric) > 0 {
		insights = append(insights, fmt.Sprintf("Found %d numeric columns", len(t.numeric)))
		for _, name := range head(t.numeric, summaryColumns) {
			vals := t.values(name)
			if len(vals) == 0 {
				continue
			}
			insights = append(insights, fmt.Sprintf("%s: average = %.2f", name, stat.Mean(vals, nil)))
		}
	}

	if len(t.text) > 0 {
		insights = append(insights, fmt.Sprintf("Found %d text/categorical columns", len(t.text)))
		for _, name := range head(t.text, summaryColumns) {
			unique := make(map[string]struct{})
			for _, v := range t.present(name) {
				unique[v] = struct{}{}
			}
			insights = append(insights, fmt.Sprintf("%s: %d unique values", name, len(unique)))
		}
	}

	return insights
}

func (t *table) trends() []string {
	insights := []string{"Trend analysis requires time-series data"}
	for _, name := range t.text {
		if isTimeColumn(t.present(name)) {
			return append(insights, "Found potential time column: "+name)
		}
	}
	return append(insights, "No time column found")
}

func isTimeColumn(vals []string) bool {
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if _, err := dateparse.ParseAny(v); err != nil {
			return false
		}
	}
	return true
}

func (t *table) correlations() []string {
	if len(t.numeric) < 2 {
		return []string{"Need at least 2 numeric columns for correlation analysis"}
	}

	var insights []string
	for i, a := range t.numeric {
		for _, b := range t.numeric[i+1:] {
			r, ok := t.pearson(a, b)
			if ok && math.Abs(r) > correlationThreshold {
				insights = append(insights, fmt.Sprintf("Strong correlation between %s and %s: %.3f", a, b, r))
			}
		}
	}
	if len(insights) == 0 {
		insights = append(insights, fmt.Sprintf("No strong correlations (|r| > %.1f) found", correlationThreshold))
	}
	return insights
}

// pearson correlates two columns over the rows where both are present.
func (t *table) pearson(a, b string) (float64, bool) {
	xa, xb := t.df.Col(a).Float(), t.df.Col(b).Float()
	var x, y []float64
	for i := range xa {
		if math.IsNaN(xa[i]) || math.IsNaN(xb[i]) {
			continue
		}
		x = append(x, xa[i])
		y = append(y, xb[i])
	}
	if len(x) < 2 {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

func (t *table) anomalies() []string {
	var insights []string
	for _, name := range t.numeric {
		if n := countOutliers(t.values(name)); n > 0 {
			insights = append(insights, fmt.Sprintf("%s: Found %d potential outliers", name, n))
		}
	}
	if len(insights) == 0 {
		insights = append(insights, "No outliers detected")
	}
	return insights
}

// countOutliers counts values outside [Q1-1.5*IQR, Q3+1.5*IQR].
func countOutliers(vals []float64) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower, upper := q1-iqrFactor*iqr, q3+iqrFactor*iqr

	n := 0
	for _, v := range sorted {
		if v < lower || v > upper {
			n++
		}
	}
	return n
}

// quantile interpolates linearly between the order statistics around
// rank (n-1)*p of an ascending slice.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
