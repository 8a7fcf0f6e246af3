// ABOUTME: Tests for tool argument decoding and validation
// ABOUTME: Checks defaults survive decoding and messages name the json field
package mcp

import (
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
		check   func(t *testing.T, a queryDatasetArgs)
	}{
		{
			name: "defaults kept",
			raw:  `{"domain":"data.seattle.gov","dataset_id":"abcd-1234","query":"SELECT *"}`,
			check: func(t *testing.T, a queryDatasetArgs) {
				assert.Equal(t, 1000, a.Limit)
				assert.Equal(t, "json", a.Format)
			},
		},
		{
			name: "values override defaults",
			raw:  `{"domain":"d","dataset_id":"abcd-1234","query":"q","limit":5,"format":"csv"}`,
			check: func(t *testing.T, a queryDatasetArgs) {
				assert.Equal(t, 5, a.Limit)
				assert.Equal(t, "csv", a.Format)
			},
		},
		{
			name:    "missing field uses json name",
			raw:     `{"domain":"d","query":"q"}`,
			wantErr: "Error: 'dataset_id' parameter is required",
		},
		{
			name:    "empty arguments",
			raw:     ``,
			wantErr: "Error: 'domain' parameter is required",
		},
		{
			name:    "bad format",
			raw:     `{"domain":"d","dataset_id":"abcd-1234","query":"q","format":"xml"}`,
			wantErr: "Error: format must be one of [json csv geojson]",
		},
		{
			name:    "zero limit",
			raw:     `{"domain":"d","dataset_id":"abcd-1234","query":"q","limit":0}`,
			wantErr: "Error: limit must be 1 or greater",
		},
		{
			name:    "malformed json",
			raw:     `{"domain":`,
			wantErr: "Error: invalid arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := queryDatasetArgs{Limit: 1000, Format: "json"}
			err := decodeArgs(json.RawMessage(tt.raw), &args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, args)
		})
	}
}

func TestSchemaForDecorates(t *testing.T) {
	schema := schemaFor[searchDatasetsArgs](map[string]func(*jsonschema.Schema){
		"limit": bounds(1, 100, 20),
	})

	limit := schema.Properties["limit"]
	require.NotNil(t, limit.Minimum)
	assert.Equal(t, float64(1), *limit.Minimum)
	assert.Equal(t, float64(100), *limit.Maximum)
	assert.JSONEq(t, "20", string(limit.Default))
	assert.ElementsMatch(t, []string{"domain", "query"}, schema.Required)
}

func TestSchemaForUnknownProperty(t *testing.T) {
	assert.Panics(t, func() {
		schemaFor[datasetInfoArgs](map[string]func(*jsonschema.Schema){"nope": pattern("x")})
	})
}
