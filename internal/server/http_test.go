package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/notecards/internal/db"
	"github.com/mithrel/notecards/internal/remote"
	"github.com/mithrel/notecards/pkg/api"
)

func newTestServer(t *testing.T, token string) (*httptest.Server, *Server) {
	t.Helper()
	cfg := viper.New()
	cfg.Set("auth.token", token)
	notes, err := db.Open(context.Background(), "mem://")
	require.NoError(t, err)
	srv := New(cfg, notes)
	srv.now = func() time.Time { return time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestRoundTripThroughClient(t *testing.T) {
	ts, _ := newTestServer(t, "")
	c := remote.New(ts.URL)
	ctx := context.Background()

	created, err := c.Create(ctx, api.Draft{Title: "Meeting Notes", Body: "# Meeting Notes\n\n- Discussed roadmap", Tags: []string{"meeting", "project"}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Meeting Notes", created.Title)
	assert.Equal(t, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC), created.CreatedAt.UTC())

	blank, err := c.Create(ctx, api.Draft{Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, api.UntitledNote, blank.Title)
	assert.Equal(t, []string{}, blank.Tags)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Empty(t, list[0].Body, "list returns summaries")
	assert.Equal(t, "Meeting Notes - Discussed roadmap", list[0].Excerpt)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Meeting Notes\n\n- Discussed roadmap", got.Body)

	require.NoError(t, c.Update(ctx, created.ID, api.Draft{Title: "Renamed", Body: "b", Tags: []string{"x"}}))
	got, err = c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
	assert.ErrorIs(t, c.Delete(ctx, created.ID), remote.ErrRemoteUnavailable)
}

func TestBearerAuth(t *testing.T) {
	ts, _ := newTestServer(t, "s3cret")
	ctx := context.Background()

	_, err := remote.New(ts.URL).List(ctx)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)

	_, err = remote.New(ts.URL, remote.WithToken("wrong")).List(ctx)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)

	notes, err := remote.New(ts.URL, remote.WithToken("s3cret")).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	// health stays open
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBadJSONIsBadRequest(t *testing.T) {
	ts, _ := newTestServer(t, "")
	resp, err := http.Post(ts.URL+"/notes", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsCountRequests(t *testing.T) {
	ts, _ := newTestServer(t, "")
	_, _ = remote.New(ts.URL).List(context.Background())
	_, _ = remote.New(ts.URL).Get(context.Background(), "missing")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(b)
	assert.Contains(t, body, `notecards_requests_total{code="200",op="list"} 1`)
	assert.Contains(t, body, `notecards_requests_total{code="404",op="get"} 1`)
}
