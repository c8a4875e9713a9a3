package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The CORS middleware already gates browser origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// StreamMetrics upgrades the connection and pushes every live metrics
// snapshot published while the client stays connected. The first message is
// the current snapshot so clients render immediately.
func (h *Handlers) StreamMetrics(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.live.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client messages, but reading is what
	// surfaces close frames and dead connections.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(v any) error {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(v)
	}

	if err := send(h.live.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := send(snapshot); err != nil {
				h.logger.WithFields(logrus.Fields{
					"remote": conn.RemoteAddr().String(),
				}).Debug("WebSocket client disconnected")
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
