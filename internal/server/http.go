// Package server is a small reference implementation of the notes service
// the client talks to. It is used by `notecards serve` and by tests.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mithrel/notecards/internal/db"
	"github.com/mithrel/notecards/pkg/api"
)

const excerptLen = 100

// Server serves the notes HTTP API backed by a db.Notes.
type Server struct {
	cfg      *viper.Viper
	notes    db.Notes
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	now      func() time.Time
}

func New(cfg *viper.Viper, notes db.Notes) *Server {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Server{
		cfg:      cfg,
		notes:    notes,
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notecards",
			Name:      "requests_total",
			Help:      "The total number of notes API requests",
		}, []string{"op", "code"}),
		now: time.Now,
	}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	notes := r.PathPrefix("/notes").Subrouter()
	notes.Use(s.authMiddleware)
	notes.HandleFunc("", s.count("list", s.handleList)).Methods(http.MethodGet)
	notes.HandleFunc("", s.count("create", s.handleCreate)).Methods(http.MethodPost)
	notes.HandleFunc("/{id}", s.count("get", s.handleGet)).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", s.count("update", s.handleUpdate)).Methods(http.MethodPatch, http.MethodPut)
	notes.HandleFunc("/{id}", s.count("delete", s.handleDelete)).Methods(http.MethodDelete)
	return r
}

// authMiddleware enforces auth.token when one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(got, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(got, "Bearer ")) != tok {
			log.Tracef("[invalid token] unauthorized => %s", r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) count(op string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		s.requests.WithLabelValues(op, strconv.Itoa(rec.code)).Inc()
	}
}

// summary is the list representation: no body, an excerpt instead.
type summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	Excerpt   string    `json:"excerpt"`
}

type detail struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	Body      string    `json:"body"`
}

func toDetail(n api.Note) detail {
	n.Normalize()
	return detail{ID: n.ID, Title: n.Title, Tags: n.Tags, CreatedAt: n.CreatedAt, Body: n.Body}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.ListNotes(r.Context())
	if err != nil {
		log.Errorf("list notes error: %s", err)
		http.Error(w, "failed to get notes", http.StatusInternalServerError)
		return
	}
	out := make([]summary, 0, len(notes))
	for _, n := range notes {
		n.Normalize()
		out = append(out, summary{
			ID:        n.ID,
			Title:     n.Title,
			Tags:      n.Tags,
			CreatedAt: n.CreatedAt,
			Excerpt:   api.Excerpt(n.Body, excerptLen),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	n, err := s.notes.GetNote(r.Context(), id)
	if err != nil {
		s.writeErr(w, "get", id, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetail(n))
}

func decodeDraft(r *http.Request) (api.Draft, error) {
	var d api.Draft
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&d); err != nil {
		return api.Draft{}, err
	}
	if strings.TrimSpace(d.Title) == "" {
		d.Title = api.UntitledNote
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r)
	if err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	n := api.Note{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Body:      d.Body,
		Tags:      d.Tags,
		CreatedAt: s.now().UTC(),
	}
	created, err := s.notes.CreateNote(r.Context(), n)
	if err != nil {
		s.writeErr(w, "create", n.ID, err)
		return
	}
	log.Printf("note added: [%s]: %s", created.Title, created.ID)
	writeJSON(w, http.StatusCreated, toDetail(created))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	d, err := decodeDraft(r)
	if err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	updated, err := s.notes.UpdateNote(r.Context(), api.Note{ID: id, Title: d.Title, Body: d.Body, Tags: d.Tags})
	if err != nil {
		s.writeErr(w, "update", id, err)
		return
	}
	log.Printf("note updated: [%s]: %s", updated.Title, updated.ID)
	writeJSON(w, http.StatusOK, toDetail(updated))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.notes.DeleteNote(r.Context(), id); err != nil {
		s.writeErr(w, "delete", id, err)
		return
	}
	log.Printf("note deleted: %s", id)
	writeJSON(w, http.StatusOK, true)
}

func (s *Server) writeErr(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, db.ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	default:
		log.Errorf("%s note %s: %s", op, id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
