package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraft_Fingerprint(t *testing.T) {
	base := Draft{
		Title: "My Note",
		Body:  "Hello world",
		Tags:  []string{"work", "important"},
	}

	t.Run("identical drafts produce identical hashes", func(t *testing.T) {
		d1 := base
		d2 := base
		assert.Equal(t, d1.Fingerprint(), d2.Fingerprint())
	})

	t.Run("tag order matters", func(t *testing.T) {
		d1 := base
		d1.Tags = []string{"work", "important"}

		d2 := base
		d2.Tags = []string{"important", "work"}

		assert.NotEqual(t, d1.Fingerprint(), d2.Fingerprint())
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		d1 := base
		d1.Title = "  My Note "
		d1.Body = "Hello world\n\n"
		d1.Tags = []string{" work", "important ", ""}

		assert.Equal(t, base.Fingerprint(), d1.Fingerprint())
	})

	t.Run("different content produces different hashes", func(t *testing.T) {
		d2 := base
		d2.Title = "Different Title"

		d3 := base
		d3.Body = "Different body"

		assert.NotEqual(t, base.Fingerprint(), d2.Fingerprint())
		assert.NotEqual(t, base.Fingerprint(), d3.Fingerprint())
	})

	t.Run("field boundaries are respected", func(t *testing.T) {
		d1 := Draft{Title: "ab", Body: "c"}
		d2 := Draft{Title: "a", Body: "bc"}
		assert.NotEqual(t, d1.Fingerprint(), d2.Fingerprint())
	})

	t.Run("empty tags vs nil tags", func(t *testing.T) {
		d1 := base
		d1.Tags = []string{}

		d2 := base
		d2.Tags = nil

		assert.Equal(t, d1.Fingerprint(), d2.Fingerprint())
	})
}

func TestDraft_Unchanged(t *testing.T) {
	n := Note{ID: "1", Title: "T", Body: "B", Tags: []string{"x"}}
	assert.True(t, Draft{Title: "T", Body: "B\n", Tags: []string{"x"}}.Unchanged(n))
	assert.False(t, Draft{Title: "T", Body: "B", Tags: []string{"x", "y"}}.Unchanged(n))
}
