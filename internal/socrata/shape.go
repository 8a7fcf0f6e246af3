// ABOUTME: Mapping from raw Socrata payloads to the client's reduced shapes
// ABOUTME: Applies truncation limits and the catalog domain filter
package socrata

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Truncation limits applied to catalog hits.
const (
	maxDescription = 500
	maxCategories  = 3
	maxTags        = 5
)

// flexInt decodes integers that Socrata sends either as numbers or strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Non-numeric values carry no count; treat them as absent.
		*f = 0
		return nil //nolint:nilerr
	}
	*f = flexInt(n)
	return nil
}

type catalogResponse struct {
	Results       []catalogHit `json:"results"`
	ResultSetSize int          `json:"resultSetSize"`
}

type catalogHit struct {
	Resource struct {
		ID               string   `json:"id"`
		Name             string   `json:"name"`
		Description      string   `json:"description"`
		UpdatedAt        string   `json:"updatedAt"`
		ColumnsFieldName []string `json:"columns_field_name"`
	} `json:"resource"`
	Classification struct {
		Categories []string `json:"categories"`
		Tags       []string `json:"tags"`
	} `json:"classification"`
	Permalink string `json:"permalink"`
}

type viewMetadata struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	CreatedAt     flexInt      `json:"createdAt"`
	RowsUpdatedAt flexInt      `json:"rowsUpdatedAt"`
	Category      string       `json:"category"`
	Tags          []string     `json:"tags"`
	Attribution   string       `json:"attribution"`
	Columns       []viewColumn `json:"columns"`
	Owner         struct {
		DisplayName string `json:"displayName"`
	} `json:"owner"`
}

type viewColumn struct {
	Name           string         `json:"name"`
	FieldName      string         `json:"fieldName"`
	DataTypeName   string         `json:"dataTypeName"`
	Description    string         `json:"description"`
	Format         map[string]any `json:"format"`
	CachedContents *struct {
		NonNull flexInt `json:"non_null"`
		Null    flexInt `json:"null"`
	} `json:"cachedContents"`
}

func shapeSummary(hit catalogHit) DatasetSummary {
	r := hit.Resource
	return DatasetSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: truncate(r.Description, maxDescription),
		UpdatedAt:   r.UpdatedAt,
		Columns:     len(r.ColumnsFieldName),
		Category:    capList(hit.Classification.Categories, maxCategories),
		Tags:        capList(hit.Classification.Tags, maxTags),
		Permalink:   hit.Permalink,
	}
}

// filterDomain keeps hits whose permalink points at domain. The catalog
// endpoint returns hits from federated domains too; those are dropped even
// when that leaves nothing.
func filterDomain(all []DatasetSummary, domain string) []DatasetSummary {
	out := make([]DatasetSummary, 0, len(all))
	for _, d := range all {
		if d.Permalink != "" && strings.Contains(d.Permalink, domain) {
			out = append(out, d)
		}
	}
	return out
}

func shapeInfo(m viewMetadata) *DatasetInfo {
	info := &DatasetInfo{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Columns:     make([]Column, 0, len(m.Columns)),
		CreatedAt:   epoch(m.CreatedAt),
		UpdatedAt:   epoch(m.RowsUpdatedAt),
		Category:    m.Category,
		Tags:        m.Tags,
		Owner:       m.Owner.DisplayName,
		Attribution: m.Attribution,
	}
	if info.Tags == nil {
		info.Tags = []string{}
	}

	for _, c := range m.Columns {
		format := c.Format
		if format == nil {
			format = map[string]any{}
		}
		info.Columns = append(info.Columns, Column{
			Name:        c.Name,
			FieldName:   c.FieldName,
			DataType:    c.DataTypeName,
			Description: c.Description,
			Format:      format,
		})
		if cc := c.CachedContents; cc != nil {
			if n := int64(cc.NonNull + cc.Null); n > info.Rows {
				info.Rows = n
			}
		}
	}
	return info
}

func epoch(v flexInt) string {
	if v <= 0 {
		return ""
	}
	return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func capList(s []string, n int) []string {
	if s == nil {
		return []string{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// decodeRows decodes a JSON array of row objects, keeping numbers exact.
func decodeRows(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}
