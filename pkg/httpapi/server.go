// Package httpapi exposes the registry as a JSON CRUD API.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jllopis/agentdir/pkg/agentcard"
	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
	"github.com/jllopis/agentdir/pkg/registry"
)

const requestIDHeader = "X-Request-Id"

// Server translates HTTP requests into registry calls. It owns no state
// beyond the registry handle.
type Server struct {
	registry *registry.Registry
}

// New creates an HTTP API server over the registry.
func New(reg *registry.Registry) *Server {
	return &Server{registry: reg}
}

// Handler returns the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/agents", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleRegister)
		r.Get("/{name}", s.handleGet)
		r.Put("/{name}", s.handleUpdate)
		r.Delete("/{name}", s.handleDelete)
	})
	return r
}

type registerRequest struct {
	URL string `json:"url"`
}

type updateRequest struct {
	URL string `json:"url,omitempty"`
}

type listResponse struct {
	Agents []agentcard.Card `json:"agents"`
	Count  int              `json:"count"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (*Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cards, err := s.registry.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Agents: cards, Count: len(cards)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "request body must be a JSON object with a non-empty \"url\"",
			Code:  string(agentdirerrors.CodeInvalidCard),
		})
		return
	}
	card, err := s.registry.Register(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	card, ok, err := s.registry.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeNotFound(w, name)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req updateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "request body must be a JSON object",
				Code:  string(agentdirerrors.CodeInvalidCard),
			})
			return
		}
	}
	card, ok, err := s.registry.Update(r.Context(), name, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeNotFound(w, name)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.registry.Delete(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

func writeNotFound(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Error: "agent \"" + name + "\" is not registered",
		Code:  string(agentdirerrors.CodeNotFound),
	})
}

func writeError(w http.ResponseWriter, err error) {
	re := agentdirerrors.AsRegistryError(err)
	writeJSON(w, re.StatusCode, errorResponse{Error: re.Error(), Code: string(re.Code)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestID assigns each request an ID, honoring one supplied by the caller.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(requestIDHeader),
			"duration", time.Since(start))
	})
}
