// ABOUTME: Tests for the descriptive statistics engine
// ABOUTME: Validates each analysis kind against small hand-built tables
package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socrataRows mimics the JSON endpoint, which returns numbers as strings.
func socrataRows() []map[string]any {
	return []map[string]any{
		{"primary_type": "THEFT", "count": "10", "arrests": "2", "date": "2024-01-01T00:00:00.000"},
		{"primary_type": "BATTERY", "count": "20", "arrests": "4", "date": "2024-01-02T00:00:00.000"},
		{"primary_type": "THEFT", "count": "30", "arrests": "6", "date": "2024-01-03T00:00:00.000"},
		{"primary_type": "ASSAULT", "count": "40", "arrests": "8", "date": "2024-01-04T00:00:00.000"},
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range Kinds() {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, Kind(s), k)
	}

	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Summary, k)

	k, err = ParseKind(" Anomalies ")
	require.NoError(t, err)
	assert.Equal(t, Anomalies, k)

	_, err = ParseKind("forecast")
	assert.Error(t, err)
}

func TestAnalyzeEmpty(t *testing.T) {
	report, err := Analyze(nil, Summary)
	require.NoError(t, err)

	assert.Equal(t, Summary, report.AnalysisType)
	assert.Equal(t, NoDataMessage, report.Message)
	assert.Empty(t, report.Insights)
	assert.NotNil(t, report.Insights)
	assert.Nil(t, report.DataShape)
}

func TestAnalyzeUnknownKind(t *testing.T) {
	_, err := Analyze(socrataRows(), Kind("forecast"))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	report, err := Analyze(socrataRows(), Summary)
	require.NoError(t, err)

	require.NotNil(t, report.DataShape)
	assert.Equal(t, Shape{Rows: 4, Columns: 4}, *report.DataShape)

	assert.Contains(t, report.Insights, "Dataset contains 4 rows and 4 columns")
	assert.Contains(t, report.Insights, "Found 2 numeric columns")
	assert.Contains(t, report.Insights, "arrests: average = 5.00")
	assert.Contains(t, report.Insights, "count: average = 25.00")
	assert.Contains(t, report.Insights, "Found 2 text/categorical columns")
	assert.Contains(t, report.Insights, "primary_type: 3 unique values")
	assert.Contains(t, report.Insights, "date: 4 unique values")

	assert.Equal(t, "int", report.ColumnTypes["count"])
	assert.Equal(t, "string", report.ColumnTypes["primary_type"])
}

func TestSummaryCapsColumns(t *testing.T) {
	rows := []map[string]any{
		{"a": "1", "b": "2", "c": "3", "d": "4", "e": "x"},
		{"a": "2", "b": "3", "c": "4", "d": "5", "e": "y"},
	}

	report, err := Analyze(rows, Summary)
	require.NoError(t, err)

	assert.Contains(t, report.Insights, "Found 4 numeric columns")
	assert.Contains(t, report.Insights, "c: average = 3.50")
	for _, insight := range report.Insights {
		assert.NotContains(t, insight, "d: average", "only the first 3 numeric columns are averaged")
	}
}

func TestSummaryMissingCells(t *testing.T) {
	rows := []map[string]any{
		{"amount": "10", "kind": "a"},
		{"amount": nil, "kind": "b"},
		{"kind": "a"},
		{"amount": "30"},
	}

	report, err := Analyze(rows, Summary)
	require.NoError(t, err)

	assert.Contains(t, report.Insights, "amount: average = 20.00")
	assert.Contains(t, report.Insights, "kind: 2 unique values")
}

func TestTrends(t *testing.T) {
	t.Run("finds time column", func(t *testing.T) {
		report, err := Analyze(socrataRows(), Trends)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"Trend analysis requires time-series data",
			"Found potential time column: date",
		}, report.Insights)
	})

	t.Run("no time column", func(t *testing.T) {
		rows := []map[string]any{
			{"kind": "alpha", "n": "1"},
			{"kind": "beta", "n": "2"},
		}
		report, err := Analyze(rows, Trends)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"Trend analysis requires time-series data",
			"No time column found",
		}, report.Insights)
	})
}

func TestCorrelations(t *testing.T) {
	t.Run("reports strong pair", func(t *testing.T) {
		report, err := Analyze(socrataRows(), Correlations)
		require.NoError(t, err)

		assert.Equal(t, []string{"Strong correlation between arrests and count: 1.000"}, report.Insights)
	})

	t.Run("negative correlation counts", func(t *testing.T) {
		rows := []map[string]any{
			{"x": 1.0, "y": 10.0},
			{"x": 2.0, "y": 8.0},
			{"x": 3.0, "y": 6.0},
			{"x": 4.0, "y": 4.0},
		}
		report, err := Analyze(rows, Correlations)
		require.NoError(t, err)

		assert.Equal(t, []string{"Strong correlation between x and y: -1.000"}, report.Insights)
	})

	t.Run("weak pair is not reported", func(t *testing.T) {
		rows := []map[string]any{
			{"x": "1", "y": "5"},
			{"x": "2", "y": "1"},
			{"x": "3", "y": "4"},
			{"x": "4", "y": "2"},
			{"x": "5", "y": "5"},
		}
		report, err := Analyze(rows, Correlations)
		require.NoError(t, err)

		require.Len(t, report.Insights, 1)
		assert.Equal(t, "No strong correlations (|r| > 0.7) found", report.Insights[0])
	})

	t.Run("needs two numeric columns", func(t *testing.T) {
		rows := []map[string]any{
			{"kind": "a", "n": "1"},
			{"kind": "b", "n": "2"},
		}
		report, err := Analyze(rows, Correlations)
		require.NoError(t, err)

		assert.Equal(t, []string{"Need at least 2 numeric columns for correlation analysis"}, report.Insights)
	})
}

func TestAnomalies(t *testing.T) {
	t.Run("flags value outside IQR fence", func(t *testing.T) {
		rows := []map[string]any{
			{"value": "1"},
			{"value": "2"},
			{"value": "3"},
			{"value": "4"},
			{"value": "100"},
		}
		report, err := Analyze(rows, Anomalies)
		require.NoError(t, err)

		assert.Equal(t, []string{"value: Found 1 potential outliers"}, report.Insights)
	})

	t.Run("value on the fence is not an outlier", func(t *testing.T) {
		rows := []map[string]any{
			{"value": "1"},
			{"value": "2"},
			{"value": "3"},
			{"value": "8"},
		}
		report, err := Analyze(rows, Anomalies)
		require.NoError(t, err)

		assert.Equal(t, []string{"No outliers detected"}, report.Insights)
	})

	t.Run("no outliers", func(t *testing.T) {
		report, err := Analyze(socrataRows(), Anomalies)
		require.NoError(t, err)

		assert.Equal(t, []string{"No outliers detected"}, report.Insights)
	})
}

func TestCountOutliers(t *testing.T) {
	assert.Equal(t, 1, countOutliers([]float64{100, 3, 1, 4, 2}))
	assert.Equal(t, 0, countOutliers([]float64{5, 5, 5, 5}))
	assert.Equal(t, 0, countOutliers(nil))
	assert.Equal(t, 2, countOutliers([]float64{-500, 10, 11, 12, 13, 14, 900}))
	// upper fence lands exactly on 8
	assert.Equal(t, 0, countOutliers([]float64{1, 2, 3, 8}))
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 8}
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 4.25, quantile(sorted, 0.75), 1e-9)
	assert.InDelta(t, 8, quantile(sorted, 1), 1e-9)
	assert.InDelta(t, 5, quantile([]float64{5}, 0.5), 1e-9)
}

func TestCell(t *testing.T) {
	assert.Equal(t, "NaN", cell(nil))
	assert.Equal(t, "NaN", cell("  "))
	assert.Equal(t, "THEFT", cell("THEFT"))
	assert.Equal(t, "2.5", cell(2.5))
	assert.Equal(t, "true", cell(true))
	assert.Equal(t, `{"latitude":"41.8"}`, cell(map[string]any{"latitude": "41.8"}))
}
