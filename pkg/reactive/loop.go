package reactive

import "sync"

// runLoop is a single-goroutine job queue: the Go stand-in for the host
// microtask tick. Jobs posted from any goroutine run in FIFO order on one
// loop goroutine, so everything a scheduler does is serialized.
type runLoop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []func()
	started bool
	stopped bool
}

func newRunLoop() *runLoop {
	l := &runLoop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// post enqueues a job, starting the loop goroutine on first use.
// Posting from within a job is safe; the job runs after the current one.
func (l *runLoop) post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.jobs = append(l.jobs, fn)
	if !l.started {
		l.started = true
		go l.run()
	}
	l.cond.Signal()
	l.mu.Unlock()
}

// run drains jobs until the loop is stopped.
func (l *runLoop) run() {
	for {
		l.mu.Lock()
		for len(l.jobs) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped && len(l.jobs) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.jobs[0]
		l.jobs = l.jobs[1:]
		l.mu.Unlock()

		fn()
	}
}

// stop lets the loop goroutine exit after draining pending jobs.
func (l *runLoop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.cond.Signal()
	l.mu.Unlock()
}
