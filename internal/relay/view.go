package relay

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// pongWait is how long a viewer may stay silent before the read
	// loop gives up on it. Pings go out at well under half that, so an
	// alive peer always answers in time.
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// View implements GET /api/view: upgrades the connection and streams
// result events to the viewer until it disconnects. Viewers do not
// send application messages; the read loop only notices closure.
// Results are broadcast only when someone uploads, so the server pings
// each viewer to keep quiet connections alive across the read
// deadline.
func (h *Handler) View(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Live feed disabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	stop := make(chan struct{})
	defer close(stop)
	go pingLoop(conn, pingInterval, stop)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// pingLoop pings the viewer until stop closes or the peer is gone. The
// client's default ping handler answers with a pong, which the pong
// handler above turns into a fresh read deadline.
func pingLoop(conn *websocket.Conn, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
