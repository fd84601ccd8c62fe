// Package stubserver serves the admin plan REST contract from memory so the
// console can be demoed and tested without the real backend.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kingrea/plandesk/internal/plan"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Server wraps the HTTP listener and the in-memory plan store.
type Server struct {
	settings Settings
	logger   Logger
	store    *store

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed preloads the store. New ids continue after the highest seeded id.
func WithSeed(plans []plan.Plan) Option {
	return func(s *Server) {
		s.store = newStore(plans)
	}
}

// NewServer prepares a stub server using the provided settings.
func NewServer(settings Settings, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		logger:   nopLogger{},
		store:    newStore(nil),
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	base := s.settings.BasePath
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET "+base+"{$}", s.handleList)
	mux.HandleFunc("POST "+base+"{$}", s.handleCreate)
	mux.HandleFunc("GET "+base+"{id}/", s.handleGet)
	mux.HandleFunc("PUT "+base+"{id}/", s.handleReplace)
	mux.HandleFunc("DELETE "+base+"{id}/", s.handleDelete)
	return mux
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("stubserver: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("stubserver: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stubserver: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = time.Now()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("stubserver: serve error: %v", err)
		}
	}()
	s.logger.Printf("stubserver: serving plans at http://%s%s", listener.Addr().String(), s.settings.BasePath)
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
// The lock is released while draining so handlers can still read server state.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	server := s.server
	if s.listener == nil || server == nil {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusDraining
	s.mu.Unlock()

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	err := server.Shutdown(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == server {
		s.listener = nil
		s.server = nil
	}
	return err
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the plan collection URL of the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr + s.settings.BasePath
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Plans returns a snapshot of the stored plans.
func (s *Server) Plans() []plan.Plan {
	return s.store.list()
}

type healthResponse struct {
	Status        string `json:"status"`
	Plans         int    `json:"plans"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	started := s.startTime
	s.mu.RUnlock()
	var uptime int64
	if !started.IsZero() {
		uptime = int64(time.Since(started).Seconds())
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Plans:         len(s.store.list()),
		UptimeSeconds: uptime,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.list())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	for _, p := range s.store.list() {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, errNotFound)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.readFields(w, r)
	if !ok {
		return
	}
	created := s.store.create(fields)
	s.logger.Printf("stubserver: created plan %d (%s)", created.ID, created.Name)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	fields, ok := s.readFields(w, r)
	if !ok {
		return
	}
	updated, err := s.store.replace(id, fields)
	if err != nil {
		writeDetail(w, http.StatusNotFound, err)
		return
	}
	s.logger.Printf("stubserver: replaced plan %d", id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.remove(id); err != nil {
		writeDetail(w, http.StatusNotFound, err)
		return
	}
	s.logger.Printf("stubserver: deleted plan %d", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) readFields(w http.ResponseWriter, r *http.Request) (planFields, bool) {
	if r.Body == nil {
		writeDetail(w, http.StatusBadRequest, errors.New("empty body"))
		return planFields{}, false
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, errors.New("payload exceeds limit"))
			return planFields{}, false
		}
		writeDetail(w, http.StatusBadRequest, errors.New("unable to read body"))
		return planFields{}, false
	}
	fields, problems := parsePlanFields(body)
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, problems)
		return planFields{}, false
	}
	return fields, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, errNotFound)
		return 0, false
	}
	return id, true
}

func writeDetail(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
