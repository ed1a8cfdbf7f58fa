// Package vdom implements Vireo's virtual tree and its reconciliation
// engine.
//
// A render pass produces a fresh tree of VNodes. The Patcher compares it
// against the previous pass's tree and applies the minimal set of
// structural operations (create, move, update, remove) to a backing tree
// through the Backend interface. Attribute-level side effects are
// delegated to Module hooks; the patcher itself only performs structural
// mutations.
//
// Child lists are reconciled with a four-pointer algorithm with keyed move
// detection: reordering a fully keyed list produces only move operations,
// never recreation.
package vdom
