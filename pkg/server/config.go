package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds server configuration. Zero fields fall back to the
// defaults from DefaultConfig.
type Config struct {
	// Address is the listen address.
	Address string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header on WebSocket upgrades.
	CheckOrigin func(r *http.Request) bool

	// PingInterval is how often the server pings idle connections.
	PingInterval time.Duration

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration

	// SendBuffer is the per-session outgoing frame queue length. A
	// session that falls this far behind is closed.
	SendBuffer int

	// ReadHeaderTimeout and ShutdownTimeout configure the HTTP server.
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// Registry receives the server's Prometheus metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry

	// TracerName names the OpenTelemetry tracer.
	TracerName string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       func(r *http.Request) bool { return true },
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
		SendBuffer:        64,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		TracerName:        "vireo",
	}
}

// withDefaults fills unset fields from the defaults.
func (c *Config) withDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	d := DefaultConfig()
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.PingInterval == 0 {
		out.PingInterval = d.PingInterval
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.SendBuffer == 0 {
		out.SendBuffer = d.SendBuffer
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.Registry == nil {
		out.Registry = prometheus.NewRegistry()
	}
	if out.TracerName == "" {
		out.TracerName = d.TracerName
	}
	return &out
}
