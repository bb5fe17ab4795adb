// Command tally is the command-line client for the tally daemon. It speaks
// the websocket message protocol to tallyd and renders results as tables or
// JSON.
package main
