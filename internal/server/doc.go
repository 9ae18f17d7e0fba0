// Package server provides the local HTTP server for the contest workspace.
//
// The server renders the embedded workspace page, exposes the workspace
// state as JSON, accepts solution submissions and streams state changes to
// browsers over Server-Sent Events. It also serves Prometheus metrics on
// /metrics.
//
// The server holds no contest state of its own. State comes from a
// [store.Store] and submissions go through a [Workspace].
package server
