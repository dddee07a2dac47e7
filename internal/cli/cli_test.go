package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/mithrel/notecards/internal/db"
	"github.com/mithrel/notecards/internal/remote"
	"github.com/mithrel/notecards/internal/server"
	"github.com/mithrel/notecards/pkg/api"
)

// isolate points every config and runtime directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	for _, k := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_RUNTIME_DIR", "HOME"} {
		dir := filepath.Join(tmp, strings.ToLower(k))
		require.NoError(t, os.MkdirAll(dir, 0o700))
		t.Setenv(k, dir)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "true")
	t.Setenv("NOTECARDS_REMOTE_URL", "")
	t.Setenv("NOTECARDS_REMOTE_TOKEN", "")
	return tmp
}

// startService runs the reference notes service on an in-memory db.
// wrap may decorate the handler to inject faults.
func startService(t *testing.T, wrap func(http.Handler) http.Handler) string {
	t.Helper()
	notes, err := db.Open(context.Background(), "mem://")
	require.NoError(t, err)
	var h http.Handler = server.New(viper.New(), notes).Router()
	if wrap != nil {
		h = wrap(h)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts.URL
}

func run(t *testing.T, url string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--remote", url}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func addNote(t *testing.T, url string, args ...string) string {
	t.Helper()
	out, _, err := run(t, url, append([]string{"note", "add"}, args...)...)
	require.NoError(t, err)
	id, _, ok := strings.Cut(strings.TrimSpace(out), "\t")
	require.True(t, ok, "unexpected add output %q", out)
	return id
}

func listJSON(t *testing.T, url string, args ...string) []api.Note {
	t.Helper()
	out, _, err := run(t, url, append([]string{"note", "list", "-o", "json"}, args...)...)
	require.NoError(t, err)
	var notes []api.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	return notes
}

func TestAddListSearch(t *testing.T) {
	isolate(t)
	url := startService(t, nil)

	welcome := addNote(t, url, "Welcome to Notes App", "-t", "welcome,guide", "-m", "# Welcome\n\nThis is your first note.")
	addNote(t, url, "Meeting Notes", "-t", "meeting,project", "-m", "- Discussed roadmap")

	notes := listJSON(t, url)
	require.Len(t, notes, 2)
	assert.Equal(t, welcome, notes[0].ID)
	assert.Equal(t, []string{"welcome", "guide"}, notes[0].Tags)

	out, _, err := run(t, url, "note", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Welcome to Notes App")
	assert.Contains(t, out, "meeting,project")

	out, _, err = run(t, url, "note", "search", "PROJECT")
	require.NoError(t, err)
	assert.Contains(t, out, "Meeting Notes")
	assert.NotContains(t, out, "Welcome to Notes App")

	assert.Len(t, listJSON(t, url, "-q", "   "), 2, "blank query keeps everything")
	assert.Empty(t, listJSON(t, url, "-q", "nothing-matches"))

	out, _, err = run(t, url, "note", "show", welcome)
	require.NoError(t, err)
	assert.Contains(t, out, "This is your first note.")
}

func TestShowFallsBackToSummary(t *testing.T) {
	isolate(t)
	failDetail := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/notes/") {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	url := startService(t, failDetail)
	id := addNote(t, url, "Summary Only", "-m", "visible in the excerpt")

	out, errOut, err := run(t, url, "note", "show", id)
	require.NoError(t, err)
	assert.Contains(t, errOut, "showing summary")
	assert.Contains(t, out, "Summary Only")
	assert.Contains(t, out, "visible in the excerpt")

	// editing never works from a summary
	_, _, err = run(t, url, "note", "edit", id)
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "cannot edit")
}

func TestEditNote(t *testing.T) {
	isolate(t)
	url := startService(t, nil)
	id := addNote(t, url, "Groceries", "-m", "buy old bread")

	t.Setenv("EDITOR", "true")
	out, _, err := run(t, url, "note", "edit", id)
	require.NoError(t, err)
	assert.Equal(t, "No changes.\n", out)

	t.Setenv("EDITOR", "sed -i s/old/new/")
	out, _, err = run(t, url, "note", "edit", id)
	require.NoError(t, err)
	assert.Equal(t, id+"\tGroceries\n", out)

	out, _, err = run(t, url, "note", "show", id, "-o", "json")
	require.NoError(t, err)
	var n api.Note
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "buy new bread", n.Body)
}

func TestAddFromEditor(t *testing.T) {
	tmp := isolate(t)
	url := startService(t, nil)

	out, _, err := run(t, url, "note", "add")
	require.NoError(t, err)
	assert.Equal(t, "No edits; note not created.\n", out)
	assert.Empty(t, listJSON(t, url))

	script := filepath.Join(tmp, "write-note.sh")
	content := "#!/bin/sh\nprintf 'Title: \\nTags: a, b\\n---\\n# Scripted\\nbody\\n' > \"$1\"\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	t.Setenv("EDITOR", script)

	_, _, err = run(t, url, "note", "add")
	require.NoError(t, err)
	notes := listJSON(t, url)
	require.Len(t, notes, 1)
	assert.Equal(t, "Scripted", notes[0].Title)
	assert.Equal(t, []string{"a", "b"}, notes[0].Tags)
}

func TestDelete(t *testing.T) {
	isolate(t)
	url := startService(t, nil)
	a := addNote(t, url, "A", "-m", "a")
	b := addNote(t, url, "B", "-m", "b")
	c := addNote(t, url, "C", "-m", "c")

	out, _, err := run(t, url, "note", "delete", a)
	require.NoError(t, err)
	assert.Equal(t, "Deleted "+a+"\n", out)

	_, _, err = run(t, url, "note", "delete", b, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	assert.Len(t, listJSON(t, url), 2)

	out, _, err = run(t, url, "note", "delete", "--yes", b, "missing", c)
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
	assert.Contains(t, out, "Deleted "+b)
	assert.Contains(t, out, "Deleted "+c)
	assert.Empty(t, listJSON(t, url))
}

func TestTags(t *testing.T) {
	isolate(t)
	url := startService(t, nil)
	addNote(t, url, "Welcome", "-t", "welcome,guide", "-m", "w")
	addNote(t, url, "Meeting", "-t", "meeting,project", "-m", "m")

	out, _, err := run(t, url, "note", "tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"welcome", "guide", "meeting", "project"}, strings.Fields(out))

	out, _, err = run(t, url, "note", "tags", "mtg")
	require.NoError(t, err)
	assert.Equal(t, "meeting\n", out)
}

func TestImport(t *testing.T) {
	tmp := isolate(t)
	url := startService(t, nil)

	arr := filepath.Join(tmp, "notes.json")
	require.NoError(t, os.WriteFile(arr, []byte(`[
  {"title": "Alpha", "tags": ["x"], "body_markdown": "alpha body"},
  {"content": "# From content\nmore"},
  {}
]`), 0o600))
	out, errOut, err := run(t, url, "note", "import", arr)
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "Imported: 2\nSkipped: 1\nFailed: 0\n")

	nd := filepath.Join(tmp, "notes.ndjson")
	require.NoError(t, os.WriteFile(nd, []byte("{\"title\":\"Line one\",\"body\":\"1\"}\n{\"title\":\"Line two\",\"body\":\"2\"}\n"), 0o600))
	out, _, err = run(t, url, "note", "import", nd)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 2\nSkipped: 0\nFailed: 0\n")

	notes := listJSON(t, url)
	require.Len(t, notes, 4)
	titles := make([]string, 0, len(notes))
	for _, n := range notes {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"Alpha", "From content", "Line one", "Line two"}, titles)

	_, _, err = run(t, url, "note", "import", filepath.Join(tmp, "missing.json"))
	assert.Error(t, err)
}

func TestRemoteDown(t *testing.T) {
	isolate(t)
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, _, err := run(t, url, "note", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
}

func TestInvalidOutputMode(t *testing.T) {
	isolate(t)
	url := startService(t, nil)
	_, _, err := run(t, url, "note", "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output")
}

func TestConfigGenerate(t *testing.T) {
	tmp := isolate(t)
	out := filepath.Join(tmp, "cfg", "config.toml")

	// config commands work even when the current config is invalid
	t.Setenv("NOTECARDS_OUTPUT", "bogus")

	stdout, _, err := run(t, "http://unused.invalid", "config", "generate", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[remote]")

	_, _, err = run(t, "http://unused.invalid", "config", "generate", "-o", out)
	require.Error(t, err)

	stdout, _, err = run(t, "http://unused.invalid", "config", "generate", "-o", out, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config already up to date")

	stdout, _, err = run(t, "http://unused.invalid", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "notecards", "config.toml")+"\n", stdout)
}

func TestServeUntilDone(t *testing.T) {
	notes, err := db.Open(context.Background(), "mem://")
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Handler: server.New(viper.New(), notes).Router()}
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestImportReportsCreateFailures(t *testing.T) {
	tmp := isolate(t)
	rejectCreate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	url := startService(t, rejectCreate)

	file := filepath.Join(tmp, "notes.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"title":"One","body":"1"},{"title":"Two","body":"2"},{}]`), 0o600))
	out, _, err := run(t, url, "note", "import", file)
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, out, "Imported: 0\nSkipped: 1\nFailed: 2\n")
}

func TestJSONIndent(t *testing.T) {
	isolate(t)
	url := startService(t, nil)
	addNote(t, url, "Indented", "-m", "x")

	out, _, err := run(t, url, "note", "list", "-o", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[{"), out)

	out, _, err = run(t, url, "note", "list", "-o", "json", "--indent")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[\n  {"), out)

	t.Setenv("NOTECARDS_JSON_INDENT", "true")
	out, _, err = run(t, url, "note", "list", "-o", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[\n  {"), out)
}
