// Package server exposes chat sessions over HTTP, with a JSON API per
// session and a server-sent event stream of ledger and budget changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/events"
	"github.com/theirongolddev/budgetbot/internal/logging"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

// maxMessageBytes bounds a message request body.
const maxMessageBytes = 64 << 10

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	// Publisher, when set, also receives every change event.
	Publisher events.Publisher
}

// Factory opens the session with the given id. It must return a fresh
// session for an unknown id.
type Factory func(ctx context.Context, id string, opts ...chat.Option) (*chat.Session, error)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Sessions        int       `json:"sessions"`
	Messages        int64     `json:"messages"`
	Failures        int64     `json:"classifier_failures"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service hosts many independent chat sessions.
type Service struct {
	cfg     Config
	factory Factory
	hub     *Hub
	log     *logging.Logger

	mu        sync.RWMutex
	startedAt time.Time
	sessions  map[string]*chat.Session
	messages  int64
	failures  int64
}

// New returns a server with the provided config.
func New(cfg Config, factory Factory, log *logging.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		cfg:       cfg,
		factory:   factory,
		hub:       NewHub(cfg.EventsBuffer),
		log:       log.Component("server"),
		startedAt: time.Now(),
		sessions:  make(map[string]*chat.Session),
	}
}

// Hub returns the service's event hub.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /v1/sessions/{id}/messages", s.handleMessage)
	mux.HandleFunc("GET /v1/sessions/{id}/summary", s.withSession(s.handleSummary))
	mux.HandleFunc("GET /v1/sessions/{id}/status", s.withSession(s.handleBudgetStatus))
	mux.HandleFunc("GET /v1/sessions/{id}/advice", s.withSession(s.handleAdvice))
	mux.HandleFunc("GET /v1/sessions/{id}/expenses", s.withSession(s.handleExpenses))
	mux.HandleFunc("GET /v1/sessions/{id}/history", s.withSession(s.handleHistory))
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Streams end when ctx does.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// session returns a live session, opening it through the factory on first
// use. Sessions are opened with the hub wired in as a publisher.
func (s *Service) session(ctx context.Context, id string) (*chat.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	var pub events.Publisher = s.hub
	if s.cfg.Publisher != nil {
		pub = events.Multi{s.hub, s.cfg.Publisher}
	}
	sess, err := s.factory(ctx, id, chat.WithPublisher(pub))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have won the race.
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = sess
	return sess, nil
}

func (s *Service) known(id string) (*chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Service) snapshotStatus() Status {
	retained, subs := s.hub.Counts()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:       s.startedAt,
		Sessions:        len(s.sessions),
		Messages:        s.messages,
		Failures:        s.failures,
		EventCount:      retained,
		SubscriberCount: subs,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

type createRequest struct {
	ID string `json:"id,omitempty"`
}

type createResponse struct {
	ID string `json:"id"`
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	sess, err := s.session(r.Context(), req.ID)
	if err != nil {
		s.log.Err(r.Context(), "open session failed", err, "session", req.ID)
		writeError(w, http.StatusInternalServerError, "could not open session")
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: sess.ID()})
}

type messageRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.known(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := sess.Process(r.Context(), req.Message)
	s.mu.Lock()
	s.messages++
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()
	if err != nil {
		s.log.Err(r.Context(), "message failed", err, "session", sess.ID())
		writeError(w, http.StatusServiceUnavailable, chat.FailureReply(err))
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// withSession resolves {id} to a known session.
func (s *Service) withSession(h func(http.ResponseWriter, *http.Request, *chat.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.known(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		h(w, r, sess)
	}
}

// monthParam reads ?month=YYYY-MM; empty means the current month.
func monthParam(r *http.Request) (string, error) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return "", nil
	}
	if _, err := time.Parse(model.MonthKeyLayout, month); err != nil {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", month)
	}
	return month, nil
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request, sess *chat.Session) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.MonthlySummary(month))
}

func (s *Service) handleBudgetStatus(w http.ResponseWriter, r *http.Request, sess *chat.Session) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.BudgetStatus(month))
}

type adviceResponse struct {
	Month  string   `json:"month,omitempty"`
	Advice []string `json:"advice"`
}

func (s *Service) handleAdvice(w http.ResponseWriter, r *http.Request, sess *chat.Session) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Month: month, Advice: sess.SpendingAdvice(month)})
}

func (s *Service) handleExpenses(w http.ResponseWriter, r *http.Request, sess *chat.Session) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list := sess.ListExpenses()
	if month != "" {
		list = pipeline.FilterByMonth(list, month)
	}
	if c := r.URL.Query().Get("category"); c != "" {
		cat, err := model.ParseCategory(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		list = pipeline.FilterByCategory(list, cat)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request, sess *chat.Session) {
	turns := sess.History()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > 0 && len(turns) > n {
			turns = turns[len(turns)-n:]
		}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Recent(r.URL.Query().Get("session")))
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	only := r.URL.Query().Get("session")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := s.hub.Subscribe(16)
	defer s.hub.Unsubscribe(id)

	// An initial comment lets clients know the stream is open.
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case env := <-ch:
			if only != "" && env.SessionID != only {
				continue
			}
			writeSSE(w, env)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %d\n", env.ID)
	_, _ = fmt.Fprintf(w, "event: %s\n", env.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
