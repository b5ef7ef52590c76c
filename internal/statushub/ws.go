package statushub

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for demo; restrict in production
	},
}

// Handler upgrades the connection, sends the latest status snapshot and
// keeps the subscriber registered until it disconnects. Incoming messages
// are ignored; the feed is one-way.
func Handler(hub *Hub, latest func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// the snapshot goes out before Add: once registered, only the hub
		// may write to this connection
		if latest != nil {
			if b, err := json.Marshal(latest()); err == nil {
				_ = ws.WriteMessage(websocket.TextMessage, b)
			}
		}

		hub.Add(ws)
		log.Println("[statushub] client connected")

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(ws)
		log.Println("[statushub] client disconnected")
	}
}
