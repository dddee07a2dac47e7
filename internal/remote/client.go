package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mithrel/notecards/pkg/api"
)

const defaultTimeout = 20 * time.Second

// maxResponseBytes caps how much of a response body is read.
var maxResponseBytes int64 = 32 << 20

var errBodyTooLarge = errors.New("response body too large")

// Client talks to the Remote Notes Service over HTTP/JSON.
//
// Contract:
//
//	GET    /notes        -> [summary...]
//	GET    /notes/{id}   -> note
//	POST   /notes        {title,tags,body_markdown} -> note
//	PATCH  /notes/{id}   {title,tags,body_markdown}
//	DELETE /notes/{id}   -> true
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the transport timeout; zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches every note summary.
func (c *Client) List(ctx context.Context) ([]api.Note, error) {
	body, err := c.do(ctx, "list", http.MethodGet, "/notes", nil)
	if err != nil {
		return nil, err
	}
	var notes []api.Note
	if err := json.Unmarshal(body, &notes); err != nil {
		return nil, malformed("list", err)
	}
	if notes == nil {
		// "null" decodes without error; the service has no notes.
		notes = []api.Note{}
	}
	return notes, nil
}

// Get fetches the full detail of one note.
func (c *Client) Get(ctx context.Context, id string) (api.Note, error) {
	body, err := c.do(ctx, "get", http.MethodGet, notePath(id), nil)
	if err != nil {
		return api.Note{}, err
	}
	return decodeNote("get", body)
}

// Create sends a draft and returns the note the service created.
func (c *Client) Create(ctx context.Context, d api.Draft) (api.Note, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return api.Note{}, err
	}
	body, err := c.do(ctx, "create", http.MethodPost, "/notes", payload)
	if err != nil {
		return api.Note{}, err
	}
	return decodeNote("create", body)
}

// Update replaces title, tags and body of note id. The response body is ignored.
func (c *Client) Update(ctx context.Context, id string, d api.Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "update", http.MethodPatch, notePath(id), payload)
	return err
}

// Delete removes note id. A literal false body is reported as a failure.
func (c *Client) Delete(ctx context.Context, id string) error {
	body, err := c.do(ctx, "delete", http.MethodDelete, notePath(id), nil)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("false")) {
		return unavailable("delete", http.StatusOK, errors.New("service reported failure"))
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var r io.Reader
	if payload != nil {
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, unavailable(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debugf("remote: %s %s failed: %v", method, path, err)
		return nil, unavailable(op, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	log.Debugf("remote: %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, unavailable(op, resp.StatusCode, nil)
	}
	if err != nil {
		return nil, unavailable(op, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > maxResponseBytes {
		return nil, malformed(op, fmt.Errorf("%w: over %d bytes", errBodyTooLarge, maxResponseBytes))
	}
	return body, nil
}

func decodeNote(op string, body []byte) (api.Note, error) {
	var n api.Note
	if err := json.Unmarshal(body, &n); err != nil {
		return api.Note{}, malformed(op, err)
	}
	return n, nil
}

func notePath(id string) string {
	return "/notes/" + url.PathEscape(id)
}
