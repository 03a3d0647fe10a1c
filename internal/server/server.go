// Package server exposes the search engine over HTTP: searches are started
// as background jobs against named benchmark objectives and polled for
// status.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ascentd/ascent/internal/config"
	apperrors "github.com/ascentd/ascent/internal/errors"
	"github.com/ascentd/ascent/internal/logging"
	"github.com/ascentd/ascent/internal/search"
	"github.com/ascentd/ascent/internal/strategy"
)

// Logger is the logging surface the server needs.
type Logger interface {
	Debug(msg string, fields ...logging.Fields)
	Info(msg string, fields ...logging.Fields)
	Warn(msg string, fields ...logging.Fields)
	Error(msg string, fields ...logging.Fields)
	WithFields(fields logging.Fields) *logging.Logger
}

// SearchState tracks one search job. Access is guarded by the server mutex.
type SearchState struct {
	ID          string
	Status      string // "pending", "running", "completed", "failed", "cancelled"
	Objective   string
	StartTime   time.Time
	EndTime     *time.Time
	Best        *search.Result
	Err         string
	History     *search.MemoryObserver
	Cancel      context.CancelFunc
	LastUpdated time.Time
}

// Server manages search jobs over HTTP.
type Server struct {
	cfg     *config.Config
	logger  Logger
	metrics *Metrics

	mu       sync.RWMutex
	searches map[string]*SearchState
}

// NewServer creates a server with the given config, logger, and metrics.
func NewServer(cfg *config.Config, logger Logger, metrics *Metrics) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		searches: make(map[string]*SearchState),
	}
}

// RegisterRoutes mounts the API on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/searches", s.handleStart)
		r.Get("/searches/{id}", s.handleStatus)
		r.Delete("/searches/{id}", s.handleCancel)
	})
}

type searchRequest struct {
	Objective      string       `json:"objective"`
	Bounds         [][2]float64 `json:"bounds"`
	Evaluations    int          `json:"evaluations"`
	PopulationSize int          `json:"population_size"`
	Maximize       *bool        `json:"maximize"`
	ErrorPolicy    string       `json:"error_policy"`
	EarlyStop      int          `json:"early_stop"`
	Seed           uint64       `json:"seed"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	bench, err := strategy.ObjectiveByName(req.Objective)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Bounds) == 0 {
		s.respondError(w, http.StatusBadRequest, "bounds are required")
		return
	}
	if len(req.Bounds) < bench.MinDims {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf(
			"objective %q needs at least %d dimensions, got %d",
			req.Objective, bench.MinDims, len(req.Bounds)))
		return
	}
	if req.Evaluations <= 0 {
		s.respondError(w, http.StatusBadRequest, "evaluations must be > 0")
		return
	}

	space, err := strategy.NewVectorSpace(req.Bounds, req.Seed)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.cfg.SearchConfig()
	cfg.Generator = strategy.RandomSearch()
	cfg.SamplerBuilder = space.SamplerBuilder()
	cfg.Fitness = strategy.FitnessFor(bench.Fn)
	if req.PopulationSize > 0 {
		cfg.PopulationSize = req.PopulationSize
	}
	if req.Maximize != nil {
		cfg.Maximize = *req.Maximize
	}
	if req.ErrorPolicy != "" {
		cfg.ErrorPolicy = search.ErrorPolicy(req.ErrorPolicy)
	}
	if req.EarlyStop > 0 {
		cfg.EarlyStop = req.EarlyStop
	}

	engine, err := search.New(cfg)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := fmt.Sprintf("search_%d", time.Now().UnixNano())
	ctx, cancel := context.WithCancel(context.Background())
	state := &SearchState{
		ID:          id,
		Status:      "pending",
		Objective:   req.Objective,
		StartTime:   time.Now(),
		History:     search.NewMemoryObserver(),
		Cancel:      cancel,
		LastUpdated: time.Now(),
	}

	s.mu.Lock()
	s.searches[id] = state
	s.mu.Unlock()

	go s.runSearch(ctx, engine, state, req.Evaluations)

	s.logger.Info("search started", logging.Fields{
		"search_id":   id,
		"objective":   req.Objective,
		"evaluations": req.Evaluations,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"search_id": id,
		"status":    "pending",
	})
}

func (s *Server) runSearch(ctx context.Context, engine *search.Engine, state *SearchState, evaluations int) {
	s.mu.Lock()
	if state.Status == "pending" {
		state.Status = "running"
		state.LastUpdated = time.Now()
	}
	s.mu.Unlock()

	observers := []search.Observer{
		state.History,
		s.metrics.Observer(),
	}
	if logger, ok := s.logger.(*logging.Logger); ok {
		zl := logging.NewZapLogger(logger.WithField("search_id", state.ID))
		observers = append(observers, search.NewLogObserver(zl, engine.Config().SearchTimeout))
	}

	best, err := engine.Run(ctx, evaluations, observers...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Status == "cancelled" {
		state.Best = best
		now := time.Now()
		state.EndTime = &now
		state.LastUpdated = now
		return
	}

	if err != nil {
		wrapped := apperrors.Wrap(err, "search run failed").
			WithOperation("run").
			WithComponent("server")
		state.Status = "failed"
		state.Err = err.Error()
		s.logger.Error("search failed", logging.Fields{
			"search_id": state.ID,
			"error":     wrapped.Error(),
		})
	} else {
		state.Status = "completed"
	}
	state.Best = best
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.searches[id]
	if !ok {
		s.respondError(w, http.StatusNotFound, "search not found")
		return
	}

	response := map[string]interface{}{
		"search_id":   state.ID,
		"status":      state.Status,
		"objective":   state.Objective,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Err != "" {
		response["error"] = state.Err
	}
	if state.Best != nil {
		response["best"] = map[string]interface{}{
			"candidate": state.Best.Candidate,
			"fitness":   state.Best.Fitness,
		}
	}
	if state.History != nil {
		response["generations"] = map[string]interface{}{
			"best": state.History.BestSeries(),
			"mean": state.History.MeanSeries(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.searches[id]
	if !ok {
		s.respondError(w, http.StatusNotFound, "search not found")
		return
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		s.respondError(w, http.StatusConflict, fmt.Sprintf("cannot cancel search with status %q", state.Status))
		return
	}

	if state.Cancel != nil {
		state.Cancel()
	}
	state.Status = "cancelled"
	state.LastUpdated = time.Now()

	s.logger.Info("search cancelled", logging.Fields{"search_id": id})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cancellation requested"})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("request rejected", logging.Fields{
		"status":  status,
		"message": message,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Close cancels every running search.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, state := range s.searches {
		if state.Cancel != nil {
			state.Cancel()
		}
	}
	return nil
}
