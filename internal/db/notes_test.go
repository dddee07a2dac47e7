package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/notecards/pkg/api"
)

func openBackends(t *testing.T) map[string]Notes {
	t.Helper()
	ctx := context.Background()

	mem, err := Open(ctx, "mem://")
	require.NoError(t, err)

	lite, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]Notes{"mem": mem, "sqlite": lite}
}

func TestNotesCRUD(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a, err := store.CreateNote(ctx, api.Note{ID: "a", Title: "First", Body: "# one", Tags: []string{"x", "y"}, CreatedAt: now})
			require.NoError(t, err)
			assert.Equal(t, "First", a.Title)
			assert.True(t, now.Equal(a.CreatedAt))

			_, err = store.CreateNote(ctx, api.Note{ID: "b", Title: "Second", CreatedAt: now})
			require.NoError(t, err)

			_, err = store.CreateNote(ctx, api.Note{ID: "a", Title: "dup"})
			assert.ErrorIs(t, err, ErrConflict)

			list, err := store.ListNotes(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "a", list[0].ID)
			assert.Equal(t, "b", list[1].ID)
			assert.NotNil(t, list[1].Tags, "tags are never nil")

			upd, err := store.UpdateNote(ctx, api.Note{ID: "a", Title: "First!", Body: "changed", Tags: []string{"z"}})
			require.NoError(t, err)
			assert.Equal(t, "First!", upd.Title)
			assert.Equal(t, []string{"z"}, upd.Tags)
			assert.True(t, now.Equal(upd.CreatedAt), "update keeps createdAt")

			_, err = store.UpdateNote(ctx, api.Note{ID: "missing"})
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.DeleteNote(ctx, "a"))
			assert.ErrorIs(t, store.DeleteNote(ctx, "a"), ErrNotFound)
			_, err = store.GetNote(ctx, "a")
			assert.ErrorIs(t, err, ErrNotFound)

			list, err = store.ListNotes(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "b", list[0].ID)
		})
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "postgres://localhost/notes")
	assert.Error(t, err)
}
