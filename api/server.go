// Package api exposes the HTTP surface consumed by the chat widget.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wing9900/war-tycoon-oracle-bot/oracle"
)

// Asker answers a single question. Satisfied by *oracle.Service.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Ingester re-populates the index from the data directory.
type Ingester interface {
	IngestDirectory(ctx context.Context, dir string) error
}

type Server struct {
	asker         Asker
	ingester      Ingester
	allowedOrigin string
	dataDir       string
	logger        *zap.Logger
	handler       http.Handler
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func New(asker Asker, ingester Ingester, allowedOrigin, dataDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	s := &Server{
		asker:         asker,
		ingester:      ingester,
		allowedOrigin: allowedOrigin,
		dataDir:       dataDir,
		logger:        logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.cors)

	r.Post("/v1/ask", s.handleAsk)
	r.Post("/v1/ingest", s.handleIngest)
	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleWidget)
	return r
}

// cors applies the configured origin policy and short-circuits
// preflight requests with an empty 200.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required", nil)
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, oracle.ErrEmptyQuestion) {
			s.writeError(w, http.StatusBadRequest, "question is required", nil)
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to process question", nil)
		return
	}

	s.writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		s.writeError(w, http.StatusInternalServerError, "ingestion is not configured", nil)
		return
	}

	if err := s.ingester.IngestDirectory(r.Context(), s.dataDir); err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "ingestion failed", nil)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ingestion complete"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	s.writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
