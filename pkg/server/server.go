package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vireo-ui/vireo/pkg/memdom"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/runtime"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// RootFactory builds the root render function for one session. It is
// called once per session (and once per server-rendered page), so any
// reactive state it creates in its closure is session-private.
type RootFactory func() runtime.RenderFunc

// Server serves a component tree over HTTP and WebSocket.
type Server struct {
	cfg      *Config
	root     RootFactory
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session

	httpServer *http.Server
}

// New creates a server for the given root component factory.
func New(cfg *Config, root RootFactory) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		cfg:     cfg,
		root:    root,
		logger:  slog.Default().With("component", "server"),
		metrics: NewMetrics(cfg.Registry),
		tracer:  otel.Tracer(cfg.TracerName),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		sessions: make(map[string]*Session),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))

	return r
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	s.logger.Info("listening", "addr", s.cfg.Address)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and closes all sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()
	for _, sess := range open {
		sess.close()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// handleIndex serves a server-rendered snapshot of the root component.
// The markup is a one-shot rendering; the live session attaches over
// /ws.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	markup, err := s.RenderToString()
	if err != nil {
		s.logger.Error("server render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexShell, markup)
}

// indexShell is the HTML page wrapping the rendered root. The app div
// is the hydration target for a connecting client.
const indexShell = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>vireo</title></head>
<body>
<div id="app">%s</div>
</body>
</html>
`

// RenderToString runs one render pass of the root component against a
// throwaway document and returns the markup.
func (s *Server) RenderToString() (string, error) {
	sched := reactive.NewScheduler()
	defer sched.Stop()

	doc := memdom.NewDocument()
	patcher := vdom.NewPatcher(doc, vdom.DefaultModules(doc)...)
	comp := runtime.New("root", s.root(), patcher, &runtime.Options{Scheduler: sched})

	errCh := make(chan error, 1)
	var markup string
	sched.Dispatch(func() {
		if err := comp.Mount(doc.Root()); err != nil {
			errCh <- err
			return
		}
		markup = memdom.RenderChildren(doc.Root())
		comp.Unmount()
		errCh <- nil
	})
	if err := <-errCh; err != nil {
		return "", err
	}
	return markup, nil
}

// handleWS upgrades the connection and runs a session on it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.WSErrors.WithLabelValues("upgrade").Inc()
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(s, conn)
	s.addSession(sess)

	if err := sess.start(); err != nil {
		s.logger.Error("session mount failed", "session", sess.ID(), "error", err)
		sess.close()
		return
	}

	s.logger.Info("session started", "session", sess.ID()[:8])
	go sess.writeLoop()
	sess.readLoop()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.ActiveSessions.Inc()
	s.metrics.SessionsTotal.Inc()
}

func (s *Server) dropSession(sess *Session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if ok {
		s.metrics.ActiveSessions.Dec()
		s.logger.Info("session closed", "session", sess.ID()[:8])
	}
}
