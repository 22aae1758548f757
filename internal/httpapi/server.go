package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/broadcast"
	"github.com/cardwatch/server/internal/cardwatch/service"
	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

// logListLimit caps GET /api/rfid-logs at the most recent rows.
const logListLimit = 100

type Dependencies struct {
	Logger *log.Logger
	Addr   string
	Auth   *service.AuthService
	Ingest *service.IngestService
	Stats  *service.StatsService
	Events store.EventStore
	Hub    *broadcast.Hub
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	auth       *service.AuthService
	ingest     *service.IngestService
	stats      *service.StatsService
	events     store.EventStore
	hub        *broadcast.Hub
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger: d.Logger,
		mux:    mux,
		auth:   d.Auth,
		ingest: d.Ingest,
		stats:  d.Stats,
		events: d.Events,
		hub:    d.Hub,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/rfid-log", s.handleIngest)
	mux.HandleFunc("GET /api/rfid-logs", s.requireAuth(s.handleListLogs))
	mux.HandleFunc("GET /api/dashboard-stats", s.requireAuth(s.handleStats))
	mux.HandleFunc("GET /ws", s.handleLiveViewer)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "cardwatch API",
		"status":  "running",
		"endpoints": map[string]string{
			"register": "POST /api/register",
			"login":    "POST /api/login",
			"rfidLog":  "POST /api/rfid-log",
			"getLogs":  "GET /api/rfid-logs",
			"getStats": "GET /api/dashboard-stats",
			"live":     "GET /ws",
		},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.auth.Register(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, messageBody{Message: "User registered successfully"})
	case errors.Is(err, service.ErrMissingField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateIdentity):
		writeError(w, http.StatusBadRequest, "User already exists")
	default:
		s.logger.Printf("register error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.auth.Login(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials")
	default:
		s.logger.Printf("login error: %v", err)
		writeError(w, http.StatusInternalServerError, "Database error")
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req types.IngestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev, err := s.ingest.Ingest(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, types.IngestResponse{Message: "Log added successfully", Log: ev})
	case errors.Is(err, service.ErrMissingField):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Printf("rfid-log error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to log RFID event")
	}
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.ListRecent(r.Context(), logListLimit)
	if err != nil {
		s.logger.Printf("rfid-logs error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}
	if events == nil {
		events = []types.AccessEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Summary(r.Context())
	if err != nil {
		s.logger.Printf("dashboard-stats error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleLiveViewer gates the websocket upgrade behind the same session
// token as the read endpoints, then hands the connection to the hub.
func (s *Server) handleLiveViewer(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(w, r) {
		return
	}
	s.hub.ServeHTTP(w, r)
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
