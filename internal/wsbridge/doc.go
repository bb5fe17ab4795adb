// Package wsbridge carries protocol messages over websocket connections.
// It provides the daemon-side listener, the client dialer, and the
// connection type both share, which satisfies protocol.Bridge.
package wsbridge
