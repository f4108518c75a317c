// Package broadcast pkg/broadcast/interfaces.go
package broadcast

import (
	"time"
)

//go:generate mockgen -destination=mock_broadcast.go -package=broadcast github.com/ringview/ringview/pkg/broadcast Conn,Source

// Conn is the write side of a subscriber connection. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Source gates the poll loop: ticks are skipped while the upstream
// source reports disconnected, and an in-flight cycle's results are
// discarded if it disconnects mid-cycle.
type Source interface {
	Connected() bool
}
