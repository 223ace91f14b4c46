package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/pooldose-core/internal/schema"
	"github.com/nerrad567/pooldose-core/internal/values"
)

// setValueRequest is the body of PUT /api/v1/values/{name}.
//
// Value carries a JSON scalar whose expected type depends on the
// parameter's kind: number for setpoints, boolean for switches, string
// for selects.
type setValueRequest struct {
	Value any `json:"value"`
}

// handleListValues returns all decodable parameters grouped by kind.
func (s *Server) handleListValues(w http.ResponseWriter, r *http.Request) {
	iv, stale, err := s.session.Instant(r.Context())
	if err != nil {
		s.logger.Warn("snapshot fetch failed", "error", err)
		writeBadGateway(w, "device snapshot unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stale":  stale,
		"values": iv.Structured(),
	})
}

// handleGetValue returns one decoded parameter value.
func (s *Server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	iv, stale, err := s.session.Instant(r.Context())
	if err != nil {
		s.logger.Warn("snapshot fetch failed", "error", err)
		writeBadGateway(w, "device snapshot unavailable")
		return
	}

	v, ok := iv.Get(name)
	if !ok {
		writeNotFound(w, "parameter not available: "+name)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":  name,
		"value": v,
		"stale": stale,
	})
}

// handleSetValue writes one parameter value through the translation
// engine.
//
// Responses:
//   - 404 for unknown parameter names
//   - 422 for values the engine rejects (wrong type, out of range, off the
//     step grid, invalid option, read-only kind)
//   - 502 when the device cannot be reached or refuses the write
func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}

	iv, _, err := s.session.Instant(r.Context())
	if err != nil {
		s.logger.Warn("snapshot fetch failed", "error", err)
		writeBadGateway(w, "device snapshot unavailable")
		return
	}

	if err := iv.Set(r.Context(), name, req.Value); err != nil {
		s.writeSetError(w, name, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":   name,
		"value":  req.Value,
		"status": "accepted",
	})
}

// writeSetError maps translation-engine errors onto HTTP statuses.
func (s *Server) writeSetError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, schema.ErrUnknownParameter):
		writeNotFound(w, "unknown parameter: "+name)
	case errors.Is(err, values.ErrTypeMismatch),
		errors.Is(err, values.ErrOutOfRange),
		errors.Is(err, values.ErrInvalidStep),
		errors.Is(err, values.ErrInvalidOption),
		errors.Is(err, values.ErrKindMismatch),
		errors.Is(err, values.ErrNoData):
		writeUnprocessable(w, err.Error())
	default:
		s.logger.Warn("value write failed", "parameter", name, "error", err)
		writeBadGateway(w, "device write failed")
	}
}
