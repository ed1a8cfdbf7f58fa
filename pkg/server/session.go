package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	vireoerrors "github.com/vireo-ui/vireo/internal/errors"
	"github.com/vireo-ui/vireo/pkg/memdom"
	"github.com/vireo-ui/vireo/pkg/protocol"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/runtime"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Session is one live client connection: a private scheduler, document,
// and root component instance. All state mutation happens on the
// session's scheduler goroutine; the read and write loops only cross
// into it through Dispatch and the send channel.
type Session struct {
	id   string
	srv  *Server
	conn *websocket.Conn

	sched *reactive.Scheduler
	doc   *memdom.Document
	rec   *memdom.Recorder
	comp  *runtime.Component

	seq  uint64
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	logger    *slog.Logger
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Timestamp fallback; uniqueness per process is enough here.
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(b[:])
}

func newSession(srv *Server, conn *websocket.Conn) *Session {
	doc := memdom.NewDocument()
	rec := memdom.NewRecorder(doc)
	patcher := vdom.NewPatcher(rec, vdom.DefaultModules(rec)...)
	sched := reactive.NewScheduler()

	s := &Session{
		id:    newSessionID(),
		srv:   srv,
		conn:  conn,
		sched: sched,
		doc:   doc,
		rec:   rec,
		send:  make(chan []byte, srv.cfg.SendBuffer),
		done:  make(chan struct{}),
	}
	s.logger = srv.logger.With("session", s.id[:8])
	s.comp = runtime.New("root", srv.root(), patcher, &runtime.Options{Scheduler: sched})
	patcher.Warn = func(msg string) { s.logger.Warn("patch warning", "msg", msg) }
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// start mounts the root component and ships the initial tree. It must
// run before the read and write loops.
func (s *Session) start() error {
	errCh := make(chan error, 1)
	s.sched.Dispatch(func() {
		s.comp.Scope().OnErrorCaptured(s.captureError)
		s.sched.OnAfterFlush(s.shipPatches)
		if err := s.comp.Mount(s.doc.Root()); err != nil {
			errCh <- err
			return
		}
		// The initial mount is not a flush; ship its patches directly.
		s.shipPatches()
		errCh <- nil
	})
	return <-errCh
}

// shipPatches drains the recorder and queues one patches frame. Runs on
// the scheduler goroutine after every flush.
func (s *Session) shipPatches() {
	patches := s.rec.Take()
	if len(patches) == 0 {
		return
	}
	start := time.Now()
	s.seq++
	_, span := s.srv.tracer.Start(context.Background(), "vireo.flush",
		trace.WithAttributes(
			attribute.String("vireo.session_id", s.id),
			attribute.Int64("vireo.seq", int64(s.seq)),
			attribute.Int("vireo.patch_count", len(patches)),
		),
	)
	defer span.End()

	frame := &protocol.PatchesFrame{Seq: s.seq, Patches: patches}
	data := protocol.EncodeFrame(protocol.FramePatches, func(e *protocol.Encoder) {
		protocol.EncodePatchesTo(e, frame)
	})

	m := s.srv.metrics
	m.FlushesTotal.Inc()
	m.PatchesSent.Add(float64(len(patches)))
	m.PatchBytes.Add(float64(len(data)))
	m.FlushDuration.Observe(time.Since(start).Seconds())

	select {
	case s.send <- data:
	case <-s.done:
	default:
		// The client cannot keep up; drop the session rather than
		// blocking the scheduler.
		m.WSErrors.WithLabelValues("send_backlog").Inc()
		s.logger.Warn("send buffer full, closing session")
		s.close()
	}
}

// readLoop consumes client frames until the connection fails.
func (s *Session) readLoop() {
	defer s.close()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) &&
				!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.srv.metrics.WSErrors.WithLabelValues("read").Inc()
			}
			return
		}
		ft, d, err := protocol.ReadFrameType(data)
		if err != nil {
			continue
		}
		switch ft {
		case protocol.FrameEvent:
			ef, err := protocol.DecodeEventFrom(d)
			if err != nil {
				s.srv.metrics.WSErrors.WithLabelValues("decode").Inc()
				s.logger.Warn("event frame decode failed",
					"error", vireoerrors.New(vireoerrors.CodeProtocolDecode).Wrap(err))
				continue
			}
			s.handleEvent(ef)
		case protocol.FramePing:
			s.enqueue(protocol.EncodeFrame(protocol.FramePong, nil))
		}
	}
}

// handleEvent dispatches one client event onto the scheduler and waits
// for the handler (not the flush) to finish, so event latency reflects
// handler time.
func (s *Session) handleEvent(ef *protocol.EventFrame) {
	m := s.srv.metrics
	m.EventsTotal.Inc()

	_, span := s.srv.tracer.Start(context.Background(), "vireo.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("vireo.session_id", s.id),
			attribute.String("vireo.event_type", ef.Type),
			attribute.Int64("vireo.node_id", int64(ef.Node)),
		),
	)
	defer span.End()

	start := time.Now()
	done := make(chan struct{})
	s.sched.Dispatch(func() {
		defer close(done)
		node := s.doc.FindByID(ef.Node)
		if node == nil {
			return
		}
		node.Dispatch(vdom.Event{Type: ef.Type, Value: ef.Value})
	})
	// A stopped scheduler drops the job without running it, so done may
	// never close once the session started tearing down.
	select {
	case <-done:
		m.EventDuration.Observe(time.Since(start).Seconds())
	case <-s.done:
	}
}

// writeLoop serializes all writes to the connection.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.srv.cfg.PingInterval)
	defer ticker.Stop()
	defer s.close()

	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.srv.metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// enqueue queues a frame for the write loop without blocking.
func (s *Session) enqueue(data []byte) {
	select {
	case s.send <- data:
	case <-s.done:
	default:
	}
}

// captureError is the root scope's error capture: it feeds the error
// metrics by code and logs the formatted report. Returning true stops
// further propagation.
func (s *Session) captureError(err error, info string) bool {
	m := s.srv.metrics
	var re *vireoerrors.RuntimeError
	if errors.As(err, &re) {
		switch re.Code {
		case vireoerrors.CodeUpdateLoop:
			m.UpdateLoopAborts.Inc()
		case vireoerrors.CodeHydrationMismatch:
			m.HydrationMismatches.Inc()
		case vireoerrors.CodeRenderFailure:
			m.RenderFailures.Inc()
		}
	}
	s.logger.Error("runtime error", "info", info, "error", err)
	return true
}

// close tears the session down: unmounts the component, stops the
// scheduler, and closes the connection. Idempotent. The scheduler
// teardown runs on its own goroutine because close may be reached from
// the scheduler goroutine itself (send backlog), which must not block
// on its own queue.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		go func() {
			s.sched.Dispatch(func() { s.comp.Unmount() })
			s.sched.WaitSettled()
			s.sched.Stop()
			s.srv.dropSession(s)
		}()
	})
}
