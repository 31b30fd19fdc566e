// Package websocket pushes operation progress to dashboard clients. A single
// hub fans broadcast messages out to every connected client; clients are
// listen-only.
package websocket
