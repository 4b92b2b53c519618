package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/evaluation"
	"github.com/ahrav/go-verdict/internal/ports"
)

// maxRequestBody caps the evaluation payload at 10 MiB. Conversations and
// their context comfortably fit; anything larger is a client bug.
const maxRequestBody = 10 << 20

// newRouter builds the HTTP surface: the evaluation endpoint (at both its
// canonical and legacy paths), health probes, and Prometheus metrics.
func newRouter(engine *evaluation.Engine, encoder ports.EncoderClient, logger *slog.Logger) http.Handler {
	s := &server{engine: engine, encoder: encoder, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/api/evaluate", s.handleEvaluate).Methods(http.MethodPost)
	r.HandleFunc("/evaluate", s.handleEvaluate).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Use(s.logRequests)
	return r
}

type server struct {
	engine  *evaluation.Engine
	encoder ports.EncoderClient
	logger  *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return
	}

	result, err := s.engine.Evaluate(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRequest) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("evaluation failed", "chat_id", req.Conversation.ChatID, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "evaluation failed"})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady verifies the encoder sidecar is reachable; the judge is
// deliberately not probed because the pipeline degrades without it.
func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.encoder.EmbedBatch(ctx, []string{"ready"}); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "encoder unreachable",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
