package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"structura/internal/application"
	"structura/internal/application/commands"
	"structura/internal/domain"
	"structura/internal/ports"
)

const (
	adapterID   = "vst"
	adapterName = "Virtual Structure Adapter"
	version     = "1.0.0"
)

// Server serves the structure catalog over HTTP.
type Server struct {
	store ports.StructureStore
	log   *slog.Logger
	mux   *http.ServeMux
}

// NewServer wires the routes onto a fresh mux.
func NewServer(store ports.StructureStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{store: store, log: log, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /adapters/vst/info", s.handleInfo)
	s.mux.HandleFunc("GET /adapters/vst/structure", s.handleStructure)
	s.mux.HandleFunc("GET /adapters/vst/thingNodes/{id}", s.handleThingNode)
	s.mux.HandleFunc("GET /adapters/vst/thingNodes/{id}/metadata/", s.handleEmptyMetadata)
	s.mux.HandleFunc("GET /adapters/vst/sources", s.handleSources)
	s.mux.HandleFunc("GET /adapters/vst/sources/{id}", s.handleSource)
	s.mux.HandleFunc("GET /adapters/vst/sources/{id}/metadata/", s.handleEmptyMetadata)
	s.mux.HandleFunc("GET /adapters/vst/sinks", s.handleSinks)
	s.mux.HandleFunc("GET /adapters/vst/sinks/{id}", s.handleSink)
	s.mux.HandleFunc("GET /adapters/vst/sinks/{id}/metadata/", s.handleEmptyMetadata)
	s.mux.HandleFunc("PUT /structure/update", s.handleUpdate)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, infoResponse{ID: adapterID, Name: adapterName, Version: version})
}

// handleStructure returns one level of the thing node hierarchy for
// lazy-loading in frontends.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "parentId must be a UUID")
			return
		}
		parentID = &id
	}

	result, err := commands.NewGetChildrenCommand(s.store, parentID).Execute(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newStructureResponse(result.Level))
}

func (s *Server) handleThingNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	tn, err := commands.NewGetThingNodeCommand(s.store, id).Execute(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newThingNodeDTO(tn))
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	src, err := commands.NewGetSourceCommand(s.store, id).Execute(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newSourceDTO(src))
}

func (s *Server) handleSink(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	snk, err := commands.NewGetSinkCommand(s.store, id).Execute(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newSinkDTO(snk))
}

// handleSources filters sources by name substring.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	result, err := commands.NewSearchCommand(s.store, commands.SearchKindSource,
		r.URL.Query().Get("filter")).Execute(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	resp := multipleSourcesResponse{ResultCount: len(result.Sources), Sources: make([]sourceDTO, 0, len(result.Sources))}
	for _, src := range result.Sources {
		resp.Sources = append(resp.Sources, newSourceDTO(src))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSinks filters sinks by name substring.
func (s *Server) handleSinks(w http.ResponseWriter, r *http.Request) {
	result, err := commands.NewSearchCommand(s.store, commands.SearchKindSink,
		r.URL.Query().Get("filter")).Execute(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	resp := multipleSinksResponse{ResultCount: len(result.Sinks), Sinks: make([]sinkDTO, 0, len(result.Sinks))}
	for _, snk := range result.Sinks {
		resp.Sinks = append(resp.Sinks, newSinkDTO(snk))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// Metadata is not implemented; frontends expect an empty list.
func (s *Server) handleEmptyMetadata(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, []any{})
}

// handleUpdate replaces or merges the catalog with the posted document.
// delete_existing_structure defaults to true; a non-empty catalog is
// wiped before the new document is written.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	deleteExisting := true
	if raw := r.URL.Query().Get("delete_existing_structure"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "delete_existing_structure must be a boolean")
			return
		}
		deleteExisting = v
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	structure, err := domain.ParseCompleteStructure(body)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if deleteExisting {
		empty, err := s.store.IsEmpty(r.Context())
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		deleteExisting = !empty
	}

	if _, err := commands.NewSyncCommand(s.store, structure, deleteExisting).Execute(r.Context()); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.log.Info("structure updated via HTTP",
		"element_types", len(structure.ElementTypes),
		"thing_nodes", len(structure.ThingNodes),
		"sources", len(structure.Sources),
		"sinks", len(structure.Sinks))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// respondStoreError maps the error taxonomy onto HTTP status codes.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		parsingErr    *domain.ParsingError
		argErr        *application.ValidationError
		conflictErr   *application.ConflictError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &parsingErr), errors.As(err, &argErr):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflictErr):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	if err := http.ListenAndServe(addr, s); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
