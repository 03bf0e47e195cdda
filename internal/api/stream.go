package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/guttosm/dappulse/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StreamPnL godoc
// @Summary      Live session PnL
// @Description  WebSocket. Sends the session PnL report on connect and after every catalog refresh.
// @Tags         portfolio
// @Param        sid  path  string  true  "Session id"
// @Success      101
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sessions/{sid}/stream [get]
func (h *Handler) StreamPnL(c *gin.Context) {
	sid := c.Param("sid")
	if _, err := h.portfolio.PnL(sid); err != nil {
		h.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logger.With("stream").Debug().Err(err).Str("session", sid).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.portfolio.Subscribe()
	defer cancel()

	log := logger.With("stream").With().Str("session", sid).Logger()
	log.Info().Msg("client connected")

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	push := func() bool {
		report, err := h.portfolio.PnL(sid)
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session closed"),
				time.Now().Add(writeWait))
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(report); err != nil {
			log.Debug().Err(err).Msg("write failed")
			return false
		}
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-updates:
			if !push() {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			log.Info().Msg("client disconnected")
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
