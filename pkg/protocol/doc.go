// Package protocol implements the binary wire format for streaming tree
// updates from a server-side runtime to a remote client.
//
// The format is a compact varint-based encoding. Each flush of the
// scheduler produces one PatchesFrame carrying the structural and
// attribute operations the patcher applied; the client replays them
// against its copy of the tree. Client interactions travel the other way
// as EventFrames.
//
// Decoding is defensive: length prefixes are validated against
// allocation limits and wire trees against a depth limit, so a malicious
// peer cannot force large allocations or deep recursion.
package protocol
