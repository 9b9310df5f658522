package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"llamable/generator"
	"llamable/preview"
)

// --- Handlers ---

type generateReq struct {
	Prompt        string `json:"prompt"`
	Image         string `json:"image,omitempty"`
	PriorArtifact string `json:"priorArtifact,omitempty"`
}

type generateResp struct {
	Code     string           `json:"code"`
	HasImage bool             `json:"hasImage"`
	Tokens   *int64           `json:"tokens,omitempty"`
	RunID    string           `json:"runId"`
	Summary  string           `json:"summary"`
	Steps    []generator.Step `json:"steps"`
	Status   string           `json:"status"`
}

type errorResp struct {
	Error string           `json:"error"`
	RunID string           `json:"runId,omitempty"`
	Steps []generator.Step `json:"steps,omitempty"`
}

type previewReq struct {
	Code string `json:"code"`
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := decodeJSON(w, r, &req); err != nil {
		// The body never reached the agent, so the run is traced here.
		trace := generator.NewTrace(uuid.NewString())
		trace.Push("received request")
		trace.Push("validation failed: invalid JSON")
		s.metrics.observeRun(generator.Result{RunID: trace.RunID}, &generator.ValidationError{Msg: err.Error()})
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), RunID: trace.RunID, Steps: trace.Steps()})
		return
	}

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	res, err := s.agent.Generate(ctx, generator.Request{
		Prompt:        req.Prompt,
		Image:         req.Image,
		PriorArtifact: req.PriorArtifact,
	})
	s.metrics.observeRun(res, err)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("generation failed", zap.String("run_id", res.RunID), zap.Error(err))
		}
		writeJSON(w, status, errorResp{Error: err.Error(), RunID: res.RunID, Steps: res.Trace.Steps()})
		return
	}

	resp := generateResp{
		Code:     res.Artifact,
		HasImage: req.Image != "",
		RunID:    res.RunID,
		Summary:  res.Summary,
		Steps:    res.Trace.Steps(),
		Status:   "done",
	}
	if res.TokensKnown {
		tokens := res.Tokens
		resp.Tokens = &tokens
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	doc, err := preview.Render(req.Code)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, preview.ErrEmptyArtifact) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResp{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// statusFor maps the generator error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case generator.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// --- Helpers ---

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
