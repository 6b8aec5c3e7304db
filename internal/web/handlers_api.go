package web

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/schemaform/internal/core"
	"github.com/JonMunkholm/schemaform/internal/logging"
)

// SuggestRequest is the body of POST /api/suggest.
type SuggestRequest struct {
	FieldName string `json:"fieldName"`
	DataType  string `json:"dataType"`
}

// RecordResponse is the body answered by POST /api/data.
type RecordResponse struct {
	core.Result
	Record core.DataRecord  `json:"record,omitempty"`
	Errors core.FieldErrors `json:"errors,omitempty"`
}

// writeResult answers a Service outcome, logging failures.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res core.Result) {
	status := resultStatus(res)
	if !res.Success {
		logging.FromContext(r.Context()).Info("api request failed",
			"path", r.URL.Path,
			"status", status,
			"code", res.Code,
		)
	}
	writeJSONStatus(w, status, res)
}

// handleGetSchema returns the current field definitions.
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.Schema(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, schema)
}

// handlePutSchema replaces the schema with a JSON field list.
func (s *Server) handlePutSchema(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
		return
	}

	schema, err := decodeSchemaPayload(body)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	s.writeResult(w, r, s.service.UpdateSchema(r.Context(), schema))
}

// handleGetData returns every record in insertion order.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Records(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []core.DataRecord{}
	}
	writeJSON(w, records)
}

// handlePostData validates a JSON object against the schema exactly like the
// data entry form, then stores it.
func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
		return
	}

	raw, err := recordPayload(body)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	outcome := s.service.SubmitRecord(r.Context(), raw)
	writeJSONStatus(w, resultStatus(outcome.Result), RecordResponse{
		Result: outcome.Result,
		Record: outcome.Record,
		Errors: outcome.Errors,
	})
}

// handleSuggest proposes validation rules for a field label and type.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		s.respondError(w, r, core.ErrSuggestInput, http.StatusBadRequest)
		return
	}

	s.writeResult(w, r, s.service.SuggestRules(r.Context(), req.FieldName, req.DataType))
}

// handleReset clears the schema and all records when enabled.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, r, s.service.Reset(r.Context()))
}

// handleHealth reports whether the store answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.service.Schema(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, map[string]any{
		"status":    "ok",
		"in_flight": s.service.Gate().ActiveCount(),
	})
}
