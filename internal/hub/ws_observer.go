package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single observer write so one stalled peer
// cannot hold up a broadcast indefinitely.
const DefaultWriteTimeout = 5 * time.Second

// WSObserver adapts a websocket connection to the Observer interface.
type WSObserver struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

// NewWSObserver wraps conn. A writeTimeout of 0 falls back to
// DefaultWriteTimeout.
func NewWSObserver(conn *websocket.Conn, writeTimeout time.Duration) *WSObserver {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &WSObserver{conn: conn, writeTimeout: writeTimeout}
}

// Send writes the event as a JSON text message.
func (o *WSObserver) Send(event Event) error {
	if err := o.conn.SetWriteDeadline(time.Now().Add(o.writeTimeout)); err != nil {
		return err
	}
	return o.conn.WriteJSON(event)
}

// Close closes the underlying connection.
func (o *WSObserver) Close() error {
	return o.conn.Close()
}
