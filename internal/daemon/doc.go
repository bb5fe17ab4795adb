// Package daemon assembles the tracking stack: it opens the store, builds
// the service and request server, starts the websocket listener, and
// enforces single-instance execution with a file lock.
package daemon
