package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/notecards/pkg/api"
)

func TestParseEditedNote(t *testing.T) {
	input := `# comment line
Title: My Title
Tags: alpha, beta ,  gamma
---
Body line 1
Body line 2
`
	title, tags, body := ParseEditedNote(input)
	assert.Equal(t, "My Title", title)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, tags)
	assert.Equal(t, "Body line 1\nBody line 2", body)
}

func TestParseKeepsHeadingsInBody(t *testing.T) {
	_, _, body := ParseEditedNote("Title:\nTags:\n---\n# Heading\ntext\n")
	assert.Equal(t, "# Heading\ntext", body)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello", FirstLine("  hello\nworld\n"))
	assert.Len(t, []rune(FirstLine(strings.Repeat("é", 130))), 120)
}

func TestResolveTitle(t *testing.T) {
	cases := []struct {
		name, title, body, want string
	}{
		{"explicit", " Explicit ", "# Other", "Explicit"},
		{"heading", "", "# Welcome!\n\nbody", "Welcome!"},
		{"double heading", "", "## Project Updates", "Project Updates"},
		{"plain line", "", "just text", "just text"},
		{"empty", "", "   ", api.UntitledNote},
		{"only marker", "", "#", api.UntitledNote},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveTitle(tc.title, tc.body))
		})
	}
}

func TestComposeThenToDraft(t *testing.T) {
	content := ComposeContent("Title", []string{"alpha", "beta"}, "body")
	assert.Contains(t, content, "Title: Title\n")
	assert.Contains(t, content, "Tags: alpha, beta\n")
	assert.Contains(t, content, "---\nbody\n")

	d := ToDraft(content)
	assert.Equal(t, api.Draft{Title: "Title", Tags: []string{"alpha", "beta"}, Body: "body"}, d)
}

func TestNewNoteTemplateTitle(t *testing.T) {
	d := ToDraft(ComposeContent("", nil, NewNoteTemplate))
	assert.Equal(t, "Your Note Title", d.Title)
	assert.Equal(t, []string{}, d.Tags)
	assert.True(t, strings.HasPrefix(d.Body, "# Your Note Title"))
}

func TestPathForID(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	path, err := PathForID("a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notecards", "a-b.notecards.md"), path)

	fresh, err := PathForID("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(fresh), "new-"))
}

func TestOpenAtWithScriptedEditor(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "sed -i s/old/new/")
	path := filepath.Join(dir, "n.md")

	out, changed, err := OpenAt(path, []byte("old text\n"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "new text\n", string(out))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	Cleanup(path, false)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
