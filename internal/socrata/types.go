// ABOUTME: Shapes returned by the Socrata client
// ABOUTME: Reduced, stable field sets derived from raw API payloads
package socrata

// Output formats accepted by the resource endpoint.
const (
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
)

// Formats lists the accepted output formats.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatGeoJSON}
}

// Column describes one dataset column.
type Column struct {
	Name        string         `json:"name"`
	FieldName   string         `json:"field_name"`
	DataType    string         `json:"data_type"`
	Description string         `json:"description"`
	Format      map[string]any `json:"format"`
}

// DatasetInfo is the metadata snapshot of a dataset.
type DatasetInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
	Rows        int64    `json:"rows"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Owner       string   `json:"owner"`
	Attribution string   `json:"attribution"`
}

// DatasetSummary is one catalog search hit.
type DatasetSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	UpdatedAt   string   `json:"updated_at"`
	Columns     int      `json:"columns"`
	Category    []string `json:"category"`
	Tags        []string `json:"tags"`
	Permalink   string   `json:"permalink"`
}

// QueryResult is the outcome of one query. For non-JSON formats Data is nil
// and Raw carries the response body.
type QueryResult struct {
	Data            []map[string]any `json:"data"`
	TotalRows       int              `json:"total_rows"`
	Query           string           `json:"query"`
	ExecutionTimeMS float64          `json:"execution_time_ms"`
	Format          string           `json:"format"`
	Raw             string           `json:"-"`
}

// IsRaw reports whether the result carries raw text instead of rows.
func (r *QueryResult) IsRaw() bool {
	return r.Format != FormatJSON
}

// NLQueryResult is the outcome of a natural-language query.
type NLQueryResult struct {
	Question       string       `json:"question"`
	GeneratedQuery string       `json:"generated_query"`
	DatasetColumns []string     `json:"dataset_columns"`
	Results        *QueryResult `json:"results,omitempty"`
}
