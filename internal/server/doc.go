// Package server answers protocol requests arriving over a bridge by
// dispatching them to the tracking service and replying with typed
// responses or error messages.
package server
