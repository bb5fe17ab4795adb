// Package protocol implements the message contract between the tally daemon
// and its peers (CLI, editor extension, webview dashboards).
//
// It owns the closed set of message discriminants, structural validation at
// the trust boundary, request construction, and the correlation machinery
// that matches asynchronous responses back to the requests awaiting them.
// Both sides of a Bridge may send unordered messages; the Tracker restores
// correctness via request ids, the Dispatcher fans unsolicited notifications
// out to subscribers, and the Manager composes the two atop a Bridge.
//
// Reuse these types when adding new operations to keep the wire contract
// stable for existing peers.
package protocol
