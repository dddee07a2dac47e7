package editor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mithrel/notecards/pkg/api"
)

const (
	TitlePrefix = "Title: "
	TagsPrefix  = "Tags: "
)

// NewNoteTemplate is the body a new note starts from.
const NewNoteTemplate = `# Your Note Title

Write your note content here using markdown.

## Examples:
- Use **bold** or *italic* text
- Create lists with - or 1. 2. 3.
- Add ` + "`code`" + ` or ` + "```code blocks```" + `
- Create [links](https://example.com)
- Add > blockquotes
`

// ComposeContent creates the text presented to the editor.
func ComposeContent(title string, tags []string, body string) string {
	var b bytes.Buffer
	b.WriteString("# notecards note\n")
	b.WriteString("# Lines starting with '#' above the --- are ignored.\n")
	b.WriteString("# Set Title and Tags (comma-separated). After '---', write Markdown body.\n")
	b.WriteString("# An empty Title falls back to the first body line.\n")
	b.WriteString(TitlePrefix)
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(TagsPrefix)
	if len(tags) > 0 {
		b.WriteString(strings.Join(tags, ", "))
	}
	b.WriteString("\n---\n")
	if body != "" {
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		b.WriteString(body)
	}
	return b.String()
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathForID returns a temp file path for a note ID. An empty id means a new note.
func PathForID(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		id = fmt.Sprintf("new-%d-%d", os.Getpid(), time.Now().UnixNano())
	}
	name := sanitizeID(id) + ".notecards.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "notecards", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "notecards", "edit", name), nil
}

// sanitizeID keeps ids that contain path separators inside the edit dir.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func ensureDirSecure(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return nil
}

func writeFile0600(path string, data []byte) error {
	if err := ensureDirSecure(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// Command builds the editor invocation for path without attaching stdio.
// VISUAL/EDITOR may carry flags, so they run through a shell wrapper.
func Command(path string) (*exec.Cmd, error) {
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	if strings.TrimSpace(ed) != "" {
		cmd := exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
		return cmd, nil
	}
	prog, err := PreferredEditor()
	if err != nil {
		return nil, err
	}
	return exec.Command(prog, path), nil
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	cmd, err := Command(path)
	if err != nil {
		return nil, false, err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// Cleanup removes the temp file unless keep is set.
func Cleanup(path string, keep bool) {
	if keep || path == "" {
		return
	}
	_ = os.Remove(path)
}

// PrepareAt writes the initial content to the given path with secure perms.
func PrepareAt(path string, initial []byte) error {
	return writeFile0600(path, initial)
}

// ParseEditedNote extracts title, tags and body from the editor output.
func ParseEditedNote(s string) (title string, tags []string, body string) {
	lines := strings.Split(s, "\n")
	inBody := false
	var bodyLines []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") && !inBody {
			continue
		}
		if !inBody {
			if strings.HasPrefix(line, strings.TrimSpace(TitlePrefix)) {
				title = strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(TitlePrefix)))

				continue
			}
			if strings.HasPrefix(line, strings.TrimSpace(TagsPrefix)) {
				raw := strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(TagsPrefix)))

				if raw != "" {
					for _, t := range strings.Split(raw, ",") {
						tt := strings.TrimSpace(t)
						if tt != "" {
							tags = append(tags, tt)
						}
					}
				}
				continue
			}
			if strings.TrimSpace(line) == "---" {
				inBody = true
				continue
			}
			// ignore other header lines
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	body = strings.TrimRight(strings.Join(bodyLines, "\n"), "\n")
	return title, tags, strings.TrimSpace(body)
}

// ResolveTitle picks the explicit title, else the first body line without
// its heading marker, else the placeholder.
func ResolveTitle(title, body string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	first := FirstLine(body)
	first = strings.TrimSpace(strings.TrimLeft(first, "#"))
	if first == "" {
		return api.UntitledNote
	}
	return first
}

// ToDraft parses editor output into a draft ready to send.
func ToDraft(s string) api.Draft {
	title, tags, body := ParseEditedNote(s)
	if tags == nil {
		tags = []string{}
	}
	return api.Draft{Title: ResolveTitle(title, body), Tags: tags, Body: body}
}

// FirstLine returns the first trimmed line, squashed and truncated.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 120 {
		s = string(r[:120])
	}
	return s
}
