// Package server exposes a component tree over HTTP and WebSocket.
//
// Each WebSocket connection gets its own Session: a private scheduler,
// an in-memory document, and a mounted root component. The session's
// recorder captures every tree mutation a flush produces and ships it to
// the client as one binary patches frame; client interactions come back
// as event frames and are dispatched onto the session's scheduler.
//
// The plain HTTP surface serves a server-rendered snapshot of the root
// component, Prometheus metrics, and a health probe.
package server
