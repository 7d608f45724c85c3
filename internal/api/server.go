// Package api provides the HTTP server for Veloce.
// It exposes the task REST API, engagement state, and the live
// celebration SSE feed.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veloce-app/veloce/internal/app/achievement"
	"github.com/veloce-app/veloce/internal/app/celebration"
	"github.com/veloce-app/veloce/internal/app/scoring"
	"github.com/veloce-app/veloce/internal/app/tasks"
	"github.com/veloce-app/veloce/internal/domain"
)

// Version is the API-reported build version.
const Version = "0.1.0"

// requestTimeout bounds non-streaming request handling. The SSE feed is
// mounted outside it and lives as long as the client stays connected.
var requestTimeout = 60 * time.Second

// Server is the Veloce HTTP API server.
type Server struct {
	tasks          *tasks.Service
	scoring        *scoring.Service
	achievements   *achievement.Service
	dispatcher     *celebration.Dispatcher
	feed           *FeedHub
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(ts *tasks.Service, sc *scoring.Service, ach *achievement.Service, disp *celebration.Dispatcher) *Server {
	return &Server{
		tasks:        ts,
		scoring:      sc,
		achievements: ach,
		dispatcher:   disp,
		feed:         NewFeedHub(disp),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// The live feed streams until the client leaves; a request timeout
	// here would sever every connected feed once it elapsed.
	r.Get("/api/celebrations/live", s.feed.HandleSSE)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
			})
		})

		r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "Veloce is running",
			})
		})

		r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"version": Version,
			})
		})

		r.Get("/api/momentum", s.handleMomentum)
		r.Get("/api/level", s.handleLevel)
		r.Get("/api/stats", s.handleStats)
		r.Get("/api/achievements", s.handleAchievements)

		r.Get("/api/tasks", s.handleListTasks)
		r.Post("/api/tasks", s.handleAddTask)
		r.Get("/api/tasks/{id}", s.handleGetTask)
		r.Delete("/api/tasks/{id}", s.handleDeleteTask)
		r.Post("/api/tasks/{id}/complete", s.handleCompleteTask)

		r.Post("/api/celebrate", s.handleCelebrate)

		// Prometheus metrics endpoint
		if s.metricsEnabled {
			r.Handle("/metrics", promhttp.Handler())
		}
	})

	return r
}

// ─── Engagement Handlers ────────────────────────────────────────────────────

func (s *Server) handleMomentum(w http.ResponseWriter, r *http.Request) {
	state := s.dispatcher.Momentum()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"streak_count": state.StreakCount,
		"is_active":    state.IsActive,
		"multiplier":   state.Multiplier(),
	})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	ul, err := s.scoring.CurrentLevel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	toNext, err := s.scoring.XPToNextLevel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pct, err := s.scoring.ProgressPct()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"level":            ul.Level,
		"current_xp":       ul.CurrentXP,
		"xp_to_next_level": toNext,
		"progress_pct":     pct,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tasks.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.achievements.ListUnlocked()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unlockedSet := make(map[string]bool, len(unlocked))
	times := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		unlockedSet[u.ID] = true
		times[u.ID] = u.UnlockedAt
	}

	type achView struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Category   string     `json:"category"`
		Message    string     `json:"message"`
		RewardXP   int        `json:"reward_xp"`
		Unlocked   bool       `json:"unlocked"`
		UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	}
	views := make([]achView, 0, s.achievements.TotalCount())
	for _, def := range s.achievements.Definitions() {
		v := achView{
			ID:       def.ID,
			Name:     def.Name,
			Category: string(def.Category),
			Message:  def.Message,
			RewardXP: def.RewardXP,
			Unlocked: unlockedSet[def.ID],
		}
		if v.Unlocked {
			at := times[def.ID]
			v.UnlockedAt = &at
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": views,
		"unlocked":     len(unlocked),
		"total":        s.achievements.TotalCount(),
	})
}

// ─── Task Handlers ──────────────────────────────────────────────────────────

type addTaskRequest struct {
	Title    string    `json:"title"`
	Priority string    `json:"priority"`
	DueAt    time.Time `json:"due_at,omitempty"`
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	priority := domain.PriorityNormal
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
	}

	task, err := s.tasks.Add(req.Title, priority, req.DueAt)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Task
		err  error
	)
	if r.URL.Query().Get("status") == "completed" {
		list, err = s.tasks.ListCompleted(50)
	} else {
		list, err = s.tasks.ListOpen()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": list})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type completeTaskRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req completeTaskRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	res, err := s.tasks.Complete(chi.URLParam(r, "id"), domain.Position{X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Ad-hoc Celebration ─────────────────────────────────────────────────────

type celebrateRequest struct {
	Level   string  `json:"level"`
	XP      int     `json:"xp"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Message string  `json:"message,omitempty"`
}

// handleCelebrate fires a celebration without touching any task. Used
// by clients for UI-local moments (onboarding, manual rewards).
func (s *Server) handleCelebrate(w http.ResponseWriter, r *http.Request) {
	var req celebrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	level := domain.CelebrationLevel(req.Level)
	xp := req.XP
	if xp == 0 {
		xp = level.DefaultXP()
	}
	ev, err := s.dispatcher.CelebrateAt(level, xp, domain.Position{X: req.X, Y: req.Y}, req.Message)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTaskAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrUnknownLevel),
		errors.Is(err, domain.ErrNegativeXP),
		errors.Is(err, domain.ErrMultiplierTooLow),
		errors.Is(err, domain.ErrMilestoneWithoutMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
