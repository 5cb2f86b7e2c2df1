package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
	"github.com/neuro-publico/conversation-engine/internal/usecase"
)

// Server is the thin REST surface over the enqueue use case and the job
// store.
type Server struct {
	enqueue *usecase.EnqueueAdVideoUseCase
	repo    port.AdVideoRepository
	auth    *AuthMiddleware
	logger  *zap.Logger
}

func NewServer(enqueue *usecase.EnqueueAdVideoUseCase, repo port.AdVideoRepository, auth *AuthMiddleware, logger *zap.Logger) *Server {
	return &Server{enqueue: enqueue, repo: repo, auth: auth, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/ms/conversational-engine/ads", func(r chi.Router) {
		r.Use(s.auth.Handler)
		r.Post("/generate-video", s.handleGenerateVideo)
		r.Get("/videos", s.handleListVideos)
		r.Get("/videos/{id}", s.handleGetVideo)
		r.Patch("/videos/{id}", s.handlePatchVideo)
	})

	return r
}

type generateVideoRequest struct {
	AdText   string `json:"ad_text"`
	FunnelID string `json:"funnel_id"`
}

func (s *Server) handleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AdText == "" {
		writeError(w, http.StatusBadRequest, "ad_text is required")
		return
	}

	result, err := s.enqueue.Execute(r.Context(), req.AdText, OwnerID(r.Context()), req.FunnelID)
	if err != nil {
		var planErr *port.PlanningError
		if errors.As(err, &planErr) {
			writeError(w, http.StatusBadGateway, "scene planning failed")
			return
		}
		s.logger.Error("enqueue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to enqueue ad video")
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		ownerID = OwnerID(r.Context())
	}

	jobs, err := s.repo.List(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("list jobs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []*entity.AdVideo{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handlePatchVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var fields entity.UpdateFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := s.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, port.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("update job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
