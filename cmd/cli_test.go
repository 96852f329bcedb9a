package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestShellBuiltinsAreNotTopLevelCommands(t *testing.T) {
	for _, name := range []string{"undo", "redo", "history"} {
		_, _, err := executeCLI(t, t.TempDir(), name)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown command \""+name+"\"")
	}
}

func TestInitSeedsSampleDataOnce(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "seeded 6 sample records")

	_, _, err = executeCLI(t, home, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record store is not empty")

	info, err := os.Stat(filepath.Join(home, ".growth-dashboard", "records.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAddThenListPersistsThroughStore(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"add", "book",
		"--title", "Dune",
		"--author", "Frank Herbert",
		"--pages", "412",
		"--tags", "sci-fi, classics",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "create reading-")

	stdout, _, err = executeCLI(t, home, "list", "books")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dune")
	assert.Contains(t, stdout, "Frank Herbert")

	stdout, _, err = executeCLI(t, home, "list", "reading", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Dune", records[0]["title"])
	assert.Equal(t, "reading", records[0]["status"])
	assert.Equal(t, []any{"sci-fi", "classics"}, records[0]["tags"])
}

func TestAddRequiresKindFields(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "add", "word", "--word", "merci")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s)")
	assert.Contains(t, err.Error(), "\"translation\"")
}

func TestAddRejectsInvalidItem(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "add", "book", "--title", "Dune", "--author", "Herbert", "--rating", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid item")

	stdout, _, err := executeCLI(t, home, "list", "reading", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)
}

func TestListFiltersAndSorts(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "list", "reading", "--sort", "rating", "--order", "desc", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Atomic Habits", records[0]["title"])

	stdout, _, err = executeCLI(t, home, "list", "vocab", "-q", "nobody-matches", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)

	_, _, err = executeCLI(t, home, "list", "vocab", "--sort", "company")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sort key")
}

func TestUpdateChangesOnlyGivenFlags(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "update", "job", "1", "--status", "offer")
	require.NoError(t, err)
	assert.Contains(t, stdout, "update job-1")

	stdout, _, err = executeCLI(t, home, "list", "job", "-q", "Google", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "offer", records[0]["status"])
	assert.Equal(t, "Software Engineer", records[0]["position"])
}

func TestUpdateMissingIDIsANoOp(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "update", "reading", "999", "--title", "Ghost")
	require.NoError(t, err)
	assert.Contains(t, stdout, "update: nothing matched, no change")

	stdout, _, err = executeCLI(t, home, "list", "reading", "-q", "Ghost", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)
}

func TestDeleteRemovesSeveralItemsInOneStep(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "delete", "reading", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "batch_delete: removed 2")

	stdout, _, err = executeCLI(t, home, "list", "reading", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)

	_, _, err = executeCLI(t, home, "delete", "reading", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a positive integer")
}

func TestExportThenImportRoundTrip(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "backup.yaml")
	stdout, _, err := executeCLI(t, home, "export", "--output", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported to "+exportPath)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "books:")
	assert.Contains(t, string(data), "trans: To speak")

	_, _, err = executeCLI(t, home, "delete", "vocabulary", "1", "2")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "imported 2 books, 2 jobs, 2 words")

	stdout, _, err = executeCLI(t, home, "list", "vocab", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	assert.Len(t, records, 2)
}

func TestExportToStdoutAsCSV(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "export", "--format", "csv", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "kind,id,title,author"))
	assert.Contains(t, stdout, "reading,1,Atomic Habits,James Clear")
}

func TestImportRejectsDocumentMissingCollection(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"books": [], "vocab": []}`), 0o600))

	_, _, err = executeCLI(t, home, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing jobs")

	stdout, _, err := executeCLI(t, home, "list", "job", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	assert.Len(t, records, 2)
}

func TestStatsJSON(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "stats", "--json")
	require.NoError(t, err)

	var out struct {
		Stats   map[string]any   `json:"stats"`
		Monthly []map[string]any `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.EqualValues(t, 2, out.Stats["books_total"])
	assert.EqualValues(t, 1, out.Stats["books_completed"])
	assert.Len(t, out.Monthly, 6)

	stdout, _, err = executeCLI(t, home, "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Personal Growth Dashboard")
}

func TestBadgerBackend(t *testing.T) {
	home := t.TempDir()
	t.Setenv("GD_STORE_BACKEND", "badger")

	_, _, err := executeCLI(t, home, "add", "job", "--company", "Acme", "--position", "SRE")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "list", "career", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0]["company"])
	assert.Equal(t, "applied", records[0]["status"])

	_, err = os.Stat(filepath.Join(home, ".growth-dashboard", "badger"))
	require.NoError(t, err)
}

func TestShellUndoRedoHistory(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	script := strings.Join([]string{
		`add book --title "The Left Hand of Darkness" --author "Ursula K. Le Guin"`,
		"undo",
		"undo",
		"redo",
		"history",
		"exit",
	}, "\n") + "\n"

	stdout, stderr, err := executeCLIWithInput(t, home, script, "shell")
	require.NoError(t, err)

	assert.Contains(t, stdout, "create reading-")
	assert.Contains(t, stdout, "undo (1 changes)")
	assert.Contains(t, stderr, "nothing to undo")
	assert.Contains(t, stdout, "redo (1 changes)")
	assert.Contains(t, stdout, "history: 2/2")

	stdout, _, err = executeCLI(t, home, "list", "reading", "-q", "left hand", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ursula K. Le Guin", records[0]["author"])
}

func TestShellReportsBadLines(t *testing.T) {
	home := t.TempDir()

	_, stderr, err := executeCLIWithInput(t, home, "add book --title \"unterminated\nbogus\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, stderr, "invalid shell line")
	assert.Contains(t, stderr, "unknown command \"bogus\"")
}

func TestSplitShellLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "empty", line: "   ", want: nil},
		{name: "plain", line: "list reading --json", want: []string{"list", "reading", "--json"}},
		{name: "double quotes", line: `add book --title "Deep Work"`, want: []string{"add", "book", "--title", "Deep Work"}},
		{name: "single quotes keep backslash", line: `add word --word 'a\b'`, want: []string{"add", "word", "--word", `a\b`}},
		{name: "escaped space", line: `list reading -q deep\ work`, want: []string{"list", "reading", "-q", "deep work"}},
		{name: "empty quoted arg", line: `update job 1 --tags ""`, want: []string{"update", "job", "1", "--tags", ""}},
		{name: "unterminated", line: `add book --title "Dune`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := splitShellLine(tt.line)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidShellLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsightsUsesConfiguredGateway(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "init")
	require.NoError(t, err)

	var calls atomic.Int32
	auth := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		auth <- r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "Keep reading daily."}, "finish_reason": "stop"}},
		})
	}))
	t.Cleanup(server.Close)
	t.Setenv("GD_INSIGHTS_BASE_URL", server.URL+"/v1")
	t.Setenv("GD_INSIGHTS_API_KEY", "sk-env")

	stdout, _, err := executeCLI(t, home, "insights", "books", "--no-spinner")
	require.NoError(t, err)
	assert.Equal(t, "Keep reading daily.\n", stdout)
	assert.Equal(t, "Bearer sk-env", <-auth)

	stdout, _, err = executeCLI(t, home, "insights")
	require.NoError(t, err)
	assert.Equal(t, "Keep reading daily.\n", stdout)
	<-auth
	assert.EqualValues(t, 2, calls.Load())
}

func TestInsightsSurfacesRateLimit(t *testing.T) {
	home := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit"}}`))
	}))
	t.Cleanup(server.Close)
	t.Setenv("GD_INSIGHTS_BASE_URL", server.URL+"/v1")
	t.Setenv("GD_INSIGHTS_API_KEY", "sk-env")

	_, _, err := executeCLI(t, home, "insights", "vocabulary", "--no-spinner")
	require.Error(t, err)
	assert.Equal(t, "Rate limit exceeded. Please try again in a moment.", err.Error())
}

func TestInsightsWithoutKeyIsNotConfigured(t *testing.T) {
	home := t.TempDir()
	t.Setenv("GD_INSIGHTS_API_KEY", "")

	_, _, err := executeCLI(t, home, "insights", "--no-spinner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI insights are not configured")
}

func TestInsightsKeySetStoresKeyForLaterCalls(t *testing.T) {
	home := t.TempDir()
	t.Setenv("GD_INSIGHTS_API_KEY", "")
	// An empty password store directory makes pass fail so the file
	// fallback is used even where pass is installed.
	t.Setenv("PASSWORD_STORE_DIR", filepath.Join(home, "no-password-store"))

	auth := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "ok"}}},
		})
	}))
	t.Cleanup(server.Close)
	t.Setenv("GD_INSIGHTS_BASE_URL", server.URL+"/v1")

	stdout, _, err := executeCLI(t, home, "insights", "key", "set", "--value", "sk-stored")
	require.NoError(t, err)
	assert.Contains(t, stdout, "api key stored")

	_, _, err = executeCLI(t, home, "insights", "career", "--no-spinner")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-stored", <-auth)

	_, _, err = executeCLI(t, home, "insights", "key", "remove")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "insights", "career", "--no-spinner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestInvalidConfigFileFailsCommands(t *testing.T) {
	home := t.TempDir()
	configDir := filepath.Join(home, ".growth-dashboard")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[store]\nbackend = \"sqlite\"\n"), 0o600))

	_, _, err := executeCLI(t, home, "list", "reading")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	_, _, err = executeCLI(t, home, "version")
	require.NoError(t, err)
}

func TestExplicitConfigFlag(t *testing.T) {
	home := t.TempDir()
	recordsPath := filepath.Join(t.TempDir(), "elsewhere.toml")
	configPath := filepath.Join(t.TempDir(), "gd.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[store]\npath = \""+filepath.ToSlash(recordsPath)+"\"\n"), 0o600))

	_, _, err := executeCLI(t, home, "--config", configPath, "init")
	require.NoError(t, err)

	_, err = os.Stat(recordsPath)
	require.NoError(t, err)
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
