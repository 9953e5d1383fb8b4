package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection, queues the initial frame and pumps until
// the peer goes away. It runs on the upgrade handler's goroutine.
func ServeWs(hub *Hub, conn *websocket.Conn, initial []byte) {
	client := NewClient(hub, conn)
	if initial != nil {
		client.Send <- initial
	}
	if !hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
