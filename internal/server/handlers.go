package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyperjump/synapse/internal/ingest"
	"github.com/hyperjump/synapse/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "synapse",
		"endpoints": map[string]string{
			"POST /search":      "search stored fragments, optionally scoped by user_id and domain",
			"POST /ingest-text": "chunk and store raw text",
			"POST /ingest-file": "extract, chunk, and store a base64-encoded file",
			"GET /status":       "fragment count and configuration",
		},
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("user_id", query.UserID),
		zap.Int("top_k", query.TopK))
	response, err := s.orchestrator.Search(r.Context(), &query)
	if err != nil {
		if errors.Is(err, models.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var input models.IngestTextInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	source := input.SourceName
	if source == "" {
		source = "uploaded"
	}
	scope := models.Scope{UserID: input.UserID, Domain: input.Domain}.Normalize()
	s.logger.Debug("ingest text request", zap.String("source", source), zap.String("user_id", scope.UserID))
	count, err := s.pipeline.IngestText(r.Context(), input.Text, source, scope)
	if err != nil {
		s.logger.Error("text ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"source_name":  source,
		"user_id":      scope.UserID,
		"domain":       scope.Domain,
		"chunks_added": count,
	})
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	var input models.IngestFileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Filename == "" {
		s.respondError(w, http.StatusBadRequest, "filename is required")
		return
	}
	data, err := base64.StdEncoding.DecodeString(input.Base64Data)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid base64 data")
		return
	}
	scope := models.Scope{UserID: input.UserID, Domain: input.Domain}.Normalize()
	s.logger.Debug("ingest file request",
		zap.String("filename", input.Filename),
		zap.Int("bytes", len(data)),
		zap.String("user_id", scope.UserID))
	count, err := s.pipeline.IngestFile(r.Context(), data, input.Filename, input.MimeType, scope)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrUnsupportedType):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ingest.ErrExtractionFailed):
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("file ingestion failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"filename":     input.Filename,
		"user_id":      scope.UserID,
		"domain":       scope.Domain,
		"chunks_added": count,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count fragments failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"fragments": count,
		"config": map[string]interface{}{
			"collection":    s.config.Store.Collection,
			"chunk_size":    s.config.Ingest.ChunkSize,
			"chunk_overlap": s.config.Ingest.ChunkOverlap,
			"web_fallback":  s.config.Web.APIKey != "",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
