// ABOUTME: Tests for the data subcommands against a fake Socrata portal
// ABOUTME: Covers query, search, info, ask, analyze, and config output
package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

func fakePortal(t *testing.T) (string, *http.Header) {
	t.Helper()
	var lastHeader http.Header

	mux := http.NewServeMux()
	mux.HandleFunc("/api/catalog/v1", func(w http.ResponseWriter, r *http.Request) {
		lastHeader = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{
				"resource":  map[string]any{"id": "ijzp-q8t2", "name": "Crimes - 2001 to Present", "columns_field_name": []string{"a", "b"}},
				"permalink": "http://" + r.Host + "/d/ijzp-q8t2",
			}},
		})
	})
	mux.HandleFunc("/api/views/ijzp-q8t2.json", func(w http.ResponseWriter, r *http.Request) {
		lastHeader = r.Header.Clone()
		_, _ = w.Write([]byte(`{"id":"ijzp-q8t2","name":"Crimes - 2001 to Present","owner":{"displayName":"CPD"},
			"columns":[{"name":"Beat","fieldName":"beat","dataTypeName":"number","cachedContents":{"non_null":"2","null":"0"}}]}`))
	})
	mux.HandleFunc("/resource/ijzp-q8t2.json", func(w http.ResponseWriter, r *http.Request) {
		lastHeader = r.Header.Clone()
		_, _ = w.Write([]byte(`[{"beat":"1"},{"beat":"2"}]`))
	})
	mux.HandleFunc("/resource/ijzp-q8t2.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("beat\n1\n2\n"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://"), &lastHeader
}

// run executes the root command with fresh flag values and an isolated
// config home, returning stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvAppToken, "")
	t.Setenv(config.EnvLogLevel, "error")

	configPath, logLevel, appToken = "", "", ""
	queryLimit, queryFormat, queryJSONOutput = socrata.DefaultQueryLimit, socrata.FormatJSON, false
	searchLimit, searchJSONOutput = socrata.DefaultSearchLimit, false
	infoJSONOutput = false
	askDryRun, askJSONOutput = false, false
	analyzeType, analyzeJSONOutput = "summary", false

	prev := clientOptions
	clientOptions = []socrata.Option{socrata.WithScheme("http")}
	t.Cleanup(func() { clientOptions = prev })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestQueryCommand(t *testing.T) {
	domain, header := fakePortal(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "query", domain, "ijzp-q8t2", "SELECT beat")
		require.NoError(t, err)
		assert.Contains(t, out, "beat")
		assert.Contains(t, out, "2")
	})

	t.Run("json with app token", func(t *testing.T) {
		out, err := run(t, "query", domain, "ijzp-q8t2", "--app-token", "tok-123", "--json", "-n", "5")
		require.NoError(t, err)

		var got socrata.QueryResult
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, 2, got.TotalRows)
		assert.Equal(t, "SELECT * LIMIT 5", got.Query)
		assert.Equal(t, "tok-123", header.Get(socrata.TokenHeader))
	})

	t.Run("raw csv", func(t *testing.T) {
		out, err := run(t, "query", domain, "ijzp-q8t2", "--format", "csv")
		require.NoError(t, err)
		assert.Equal(t, "beat\n1\n2\n", out)
	})
}

func TestSearchCommand(t *testing.T) {
	domain, _ := fakePortal(t)

	out, err := run(t, "search", domain, "crime")
	require.NoError(t, err)
	assert.Contains(t, out, "ijzp-q8t2")
	assert.Contains(t, out, "Crimes - 2001 to Present")

	out, err = run(t, "search", domain, "crime", "--json")
	require.NoError(t, err)
	var got []socrata.DatasetSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Columns)
}

func TestInfoCommand(t *testing.T) {
	domain, _ := fakePortal(t)

	out, err := run(t, "info", domain, "ijzp-q8t2")
	require.NoError(t, err)
	assert.Contains(t, out, "Crimes - 2001 to Present")
	assert.Contains(t, out, "CPD")
	assert.Contains(t, out, "beat")
	assert.Contains(t, out, "number")
}

func TestAskCommand(t *testing.T) {
	domain, _ := fakePortal(t)

	out, err := run(t, "ask", domain, "ijzp-q8t2", "what", "is", "the", "average", "beat", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT AVG(Beat)")

	out, err = run(t, "ask", domain, "ijzp-q8t2", "how many", "--json")
	require.NoError(t, err)
	var got socrata.NLQueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SELECT COUNT(*)", got.GeneratedQuery)
	require.NotNil(t, got.Results)
}

func TestAnalyzeCommand(t *testing.T) {
	domain, _ := fakePortal(t)

	out, err := run(t, "analyze", domain, "ijzp-q8t2", "--type", "anomalies")
	require.NoError(t, err)
	assert.Contains(t, out, "anomalies analysis")
	assert.Contains(t, out, "No outliers detected")

	_, err = run(t, "analyze", domain, "ijzp-q8t2", "--type", "forecast")
	assert.ErrorContains(t, err, "unknown analysis type")
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("app_token = \"abcdefgh\"\nmax_response_bytes = 1234\n"), 0o600))

	out, err := run(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "max_response_bytes = 1234")
	assert.Contains(t, out, "****efgh")
	assert.NotContains(t, out, "abcdefgh")

	_, err = run(t, "config", "--config", filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
