package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mithrel/notecards/pkg/api"
)

// Notes is the persistence contract behind the reference notes service.
type Notes interface {
	ListNotes(ctx context.Context) ([]api.Note, error)
	GetNote(ctx context.Context, id string) (api.Note, error)
	CreateNote(ctx context.Context, n api.Note) (api.Note, error)
	// UpdateNote replaces title, body and tags; id and createdAt are kept.
	UpdateNote(ctx context.Context, n api.Note) (api.Note, error)
	DeleteNote(ctx context.Context, id string) error
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Open returns a Notes store based on a URL: mem:// or sqlite://path.
func Open(ctx context.Context, url string) (Notes, error) {
	switch {
	case url == "" || strings.HasPrefix(url, "mem://"):
		return newMemStore(), nil
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported db url %q (want mem:// or sqlite://path)", url)
	}
}
