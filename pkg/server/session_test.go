package server

import (
	"testing"
	"time"

	"github.com/vireo-ui/vireo/pkg/memdom"
	"github.com/vireo-ui/vireo/pkg/protocol"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/runtime"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

func emptyRoot() runtime.RenderFunc {
	return func() (*vdom.VNode, error) {
		return vdom.Element("div", nil), nil
	}
}

// A disconnect can stop the scheduler between the read loop receiving an
// event frame and dispatching it; the dropped job must not leave the read
// loop waiting forever.
func TestHandleEventAfterCloseReturns(t *testing.T) {
	srv := New(nil, emptyRoot)
	sched := reactive.NewScheduler()
	s := &Session{
		id:    "closing",
		srv:   srv,
		sched: sched,
		doc:   memdom.NewDocument(),
		send:  make(chan []byte, 1),
		done:  make(chan struct{}),
	}
	s.logger = srv.logger

	close(s.done)
	sched.Stop()

	finished := make(chan struct{})
	go func() {
		s.handleEvent(&protocol.EventFrame{Seq: 1, Node: 1, Type: "click"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("handleEvent blocked after session close")
	}
}
