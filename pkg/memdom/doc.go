// Package memdom provides an in-memory backing tree for the patcher.
//
// A Document is a mutable node tree implementing the vdom backend
// interfaces. It serves three roles: the server-side rendering target
// (RenderHTML), the hydration source (ParseHTML), and the authoritative
// tree behind a remote session, where a Recorder captures every mutation
// as a wire patch for the connected client to replay.
package memdom
