package api

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/service"
	"github.com/wricardo/mcp-training/shortestmaze/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service   service.GameService
	hub       *websocket.Hub
	router    *mux.Router
	registry  *prometheus.Registry
	metrics   *Metrics
	validator *requestValidator
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		service:   gameService,
		hub:       hub,
		router:    mux.NewRouter(),
		registry:  registry,
		metrics:   NewMetrics(registry),
		validator: newRequestValidator(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(render.SetContentType(render.ContentTypeJSON))
	api.Use(s.metrics.Middleware)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Unified sessions for multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-move", s.handleBulkMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/sessions/{id}/solution", s.handleGetSolution).Methods("GET")
	api.HandleFunc("/sessions/{id}/hint", s.handleGetHint).Methods("GET")

	// Stateless pathfinding
	api.HandleFunc("/path", s.handleFindPath).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Registry exposes the Prometheus registry so callers can add collectors
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// bind decodes and validates a request body, rendering the failure itself
func (s *Server) bind(w http.ResponseWriter, r *http.Request, data render.Binder) bool {
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	if errResp := s.validator.Check(data); errResp != nil {
		render.Render(w, r, errResp)
		return false
	}
	return true
}

// broadcast pushes a state change to WebSocket clients of a session
func (s *Server) broadcast(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req := &CreateSessionRequest{}
	if err := bindOptional(r, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errResp := s.validator.Check(req); errResp != nil {
		render.Render(w, r, errResp)
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req := &MoveRequest{}
	if !s.bind(w, r, req) {
		return
	}

	result, err := s.service.Move(r.Context(), sessionID, req.Direction, req.Reset)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	s.metrics.observeMove(result.Success)
	if result.GameState != nil && result.GameState.GameOver && result.Step != nil && result.Step.Arrived {
		s.metrics.observeGameOver(result.GameState.Victory)
	}
	s.broadcast(sessionID, result.GameState)

	// Compact server log for observability
	if step := result.Step; step != nil {
		status := "FAIL"
		if result.Success {
			status = "OK"
		}
		log.Printf("[MOVE] session=%s %s %s->%s tile=%s status=%s",
			sessionID, step.Dir, step.From, step.To, step.TileChar, status)
	} else if a := result.AttemptedTo; a != nil {
		log.Printf("[MOVE] session=%s BLOCKED attempt=(%d,%d) tile=%s type=%s",
			sessionID, a.Row, a.Column, a.TileChar, a.TileType)
	}

	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req := &BulkMoveRequest{}
	if !s.bind(w, r, req) {
		return
	}

	result, err := s.service.BulkMove(r.Context(), sessionID, req.Moves, req.Reset)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	for _, step := range result.Steps {
		s.metrics.observeMove(step.Success)
		if step.Arrived {
			s.metrics.observeGameOver(result.GameOverCode == "victory")
		}
	}
	if result.AttemptedTo != nil {
		s.metrics.observeMove(false)
	}
	s.broadcast(sessionID, result.GameState)

	stop := result.StopReasonCode
	if stop == "" {
		stop = "none"
	}
	log.Printf("[BULK] session=%s exec=%d/%d stop=%s end=%s steps=%d optimal=%d",
		sessionID, result.MovesExecuted, result.RequestedMoves, stop, result.EndPos, result.StepsTaken, result.OptimalSteps)

	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	s.broadcast(sessionID, state)

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "New board generated",
		"state":   state,
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Restart(r.Context(), sessionID)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	s.broadcast(sessionID, state)

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "Board restarted",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, history)
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	solution, err := s.service.GetSolution(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, solution)
}

func (s *Server) handleGetHint(w http.ResponseWriter, r *http.Request) {
	hint, err := s.service.GetHint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, hint)
}

func (s *Server) handleFindPath(w http.ResponseWriter, r *http.Request) {
	req := &PathRequest{}
	if !s.bind(w, r, req) {
		return
	}

	result, err := s.service.FindPath(r.Context(), service.PathRequest(*req))
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	s.metrics.observePath(result.Found, result.Expanded)
	log.Printf("[PATH] grid=%d %s->%s blocked=%d found=%t steps=%d expanded=%d",
		req.GridSize, req.Start, req.Destination, len(req.Blocked), result.Found, result.Steps, result.Expanded)

	respondJSON(w, r, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	req := &ConfigRequest{}
	if !s.bind(w, r, req) {
		return
	}

	gameConfig := req.GameConfig
	if err := s.service.SaveConfig(r.Context(), req.ConfigID, &gameConfig); err != nil {
		render.Render(w, r, ErrService(err))
		return
	}

	respondJSON(w, r, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": req.ConfigID,
	})
}

// Unified Sessions Handler

func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo

	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		for _, id := range strings.Split(sessionIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if session, err := s.service.GetSession(r.Context(), id); err == nil {
				sessions = append(sessions, session)
			}
		}
	} else {
		allSessions, err := s.service.ListSessions(r.Context())
		if err != nil {
			render.Render(w, r, ErrService(err))
			return
		}
		configName := query.Get("configName")
		for _, session := range allSessions {
			if configName == "" || session.ConfigName == configName {
				sessions = append(sessions, session)
			}
		}
	}

	configName := ""
	gridSize := 0
	if len(sessions) > 0 {
		configName = sessions[0].ConfigName
		if sessions[0].GameConfig != nil {
			gridSize = sessions[0].GameConfig.GridSize
		}
	}

	entries := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		entries = append(entries, map[string]interface{}{
			"session_id":    session.ID,
			"config_name":   session.ConfigName,
			"game_state":    session.GameState,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		})
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"config_name": configName,
		"grid_size":   gridSize,
		"sessions":    entries,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusNotFound)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
