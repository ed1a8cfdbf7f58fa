package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/runtime"
	"github.com/vireo-ui/vireo/pkg/server"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application",
		Long: `Serve a small demo application: a counter and a sortable
keyed list, server-rendered at / and live over /ws. Prometheus
metrics are exposed at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")

	return cmd
}

func runServe(addr string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := server.DefaultConfig()
	cfg.Address = addr
	srv := server.New(cfg, demoRoot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// demoRoot builds the demo app for one session: a click counter and a
// keyed list that can be shuffled and appended to.
func demoRoot() runtime.RenderFunc {
	count := reactive.NewValue(0)
	items := reactive.NewList("alpha", "bravo", "charlie")

	return func() (*vdom.VNode, error) {
		n := count.Get().(int)

		lis := make([]*vdom.VNode, 0, items.Len())
		for _, it := range items.Items() {
			name := it.(string)
			lis = append(lis, vdom.KeyedElement(name, "li", nil, vdom.Text(name)))
		}

		return vdom.Element("div", &vdom.NodeData{Attrs: map[string]string{"class": "app"}},
			vdom.Element("h1", nil, vdom.Text("vireo demo")),
			vdom.Element("p", nil, vdom.Text(fmt.Sprintf("count: %d", n))),
			vdom.Element("button", &vdom.NodeData{
				On: map[string]vdom.EventHandler{
					"click": func(vdom.Event) { count.Set(n + 1) },
				},
			}, vdom.Text("increment")),
			vdom.Element("button", &vdom.NodeData{
				On: map[string]vdom.EventHandler{
					"click": func(vdom.Event) { items.Reverse() },
				},
			}, vdom.Text("reverse")),
			vdom.Element("button", &vdom.NodeData{
				On: map[string]vdom.EventHandler{
					"click": func(vdom.Event) {
						items.Push(fmt.Sprintf("item-%d", items.Len()+1))
					},
				},
			}, vdom.Text("append")),
			vdom.Element("ul", nil, lis...),
		), nil
	}
}
