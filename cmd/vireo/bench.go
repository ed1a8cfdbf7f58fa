package main

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/vireo-ui/vireo/pkg/protocol"
)

func benchCmd() *cobra.Command {
	var (
		url      string
		clients  int
		duration time.Duration
		rps      float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load-test a running server over WebSocket",
		Long: `Connect a pool of WebSocket clients to a running server,
drive click events at a fixed per-client rate, and report event
throughput and patch-frame latency.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(url, clients, duration, rps)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "ws://localhost:8080/ws", "WebSocket endpoint")
	cmd.Flags().IntVarP(&clients, "clients", "c", 50, "Concurrent clients")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 30*time.Second, "Test duration")
	cmd.Flags().Float64VarP(&rps, "rps", "r", 2, "Events per second per client")

	return cmd
}

type benchCounters struct {
	eventsSent   atomic.Uint64
	framesRecv   atomic.Uint64
	patchesRecv  atomic.Uint64
	patchBytes   atomic.Uint64
	dialFailures atomic.Uint64
	readFailures atomic.Uint64
}

type latencyRecorder struct {
	mu      sync.Mutex
	samples []time.Duration
}

func (l *latencyRecorder) add(d time.Duration) {
	l.mu.Lock()
	if len(l.samples) < 1_000_000 {
		l.samples = append(l.samples, d)
	}
	l.mu.Unlock()
}

func (l *latencyRecorder) percentile(p float64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(l.samples))
	copy(sorted, l.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func runBench(url string, clients int, duration time.Duration, rps float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var (
		counters benchCounters
		latency  latencyRecorder
		wg       sync.WaitGroup
	)

	fmt.Printf("bench: %d clients, %.1f ev/s each, %s against %s\n",
		clients, rps, duration, url)

	start := time.Now()
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Stagger dials so the server does not see a thundering herd.
			time.Sleep(time.Duration(rand.Int63n(int64(time.Second))))
			runBenchClient(ctx, url, rps, &counters, &latency)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	sent := counters.eventsSent.Load()
	fmt.Println()
	fmt.Printf("  events sent:    %d (%.1f/s)\n", sent, float64(sent)/elapsed.Seconds())
	fmt.Printf("  patch frames:   %d\n", counters.framesRecv.Load())
	fmt.Printf("  patches:        %d\n", counters.patchesRecv.Load())
	fmt.Printf("  patch bytes:    %d\n", counters.patchBytes.Load())
	fmt.Printf("  latency p50:    %s\n", latency.percentile(0.50))
	fmt.Printf("  latency p95:    %s\n", latency.percentile(0.95))
	fmt.Printf("  latency p99:    %s\n", latency.percentile(0.99))
	fmt.Printf("  dial failures:  %d\n", counters.dialFailures.Load())
	fmt.Printf("  read failures:  %d\n", counters.readFailures.Load())
	return nil
}

// runBenchClient drives one connection: read the initial tree, locate a
// clickable node, then fire events at the configured rate and time the
// responding patch frames.
func runBenchClient(ctx context.Context, url string, rps float64, c *benchCounters, lat *latencyRecorder) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		c.dialFailures.Add(1)
		return
	}
	defer conn.Close()

	initial := readBenchPatches(conn, c)
	if initial == nil {
		return
	}
	var target uint64
	for _, p := range initial.Patches {
		if p.Op == protocol.PatchInsertNode {
			if n := findBenchClickNode(p.Tree); n != nil {
				target = n.ID
			}
		}
	}
	if target == 0 {
		return
	}

	interval := time.Duration(float64(time.Second) / rps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		seq++
		frame := protocol.EncodeFrame(protocol.FrameEvent, func(e *protocol.Encoder) {
			protocol.EncodeEventTo(e, &protocol.EventFrame{Seq: seq, Node: target, Type: "click"})
		})
		sent := time.Now()
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
		c.eventsSent.Add(1)

		if pf := readBenchPatches(conn, c); pf != nil {
			lat.add(time.Since(sent))
		} else {
			return
		}
	}
}

func readBenchPatches(conn *websocket.Conn, c *benchCounters) *protocol.PatchesFrame {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.readFailures.Add(1)
			return nil
		}
		ft, d, err := protocol.ReadFrameType(data)
		if err != nil {
			c.readFailures.Add(1)
			return nil
		}
		if ft != protocol.FramePatches {
			continue
		}
		pf, err := protocol.DecodePatchesFrom(d)
		if err != nil {
			c.readFailures.Add(1)
			return nil
		}
		c.framesRecv.Add(1)
		c.patchesRecv.Add(uint64(len(pf.Patches)))
		c.patchBytes.Add(uint64(len(data)))
		return pf
	}
}

func findBenchClickNode(n *protocol.WireNode) *protocol.WireNode {
	if n == nil {
		return nil
	}
	for _, ev := range n.Events {
		if ev == "click" {
			return n
		}
	}
	for _, child := range n.Children {
		if found := findBenchClickNode(child); found != nil {
			return found
		}
	}
	return nil
}
