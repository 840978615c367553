package handler

import (
	"io"
	"net/http"
	"time"

	"salons/backend/internal/hub"
	"salons/backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	keepAlivePeriod = 25 * time.Second
	writeWait       = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamEvents godoc
// @Summary      Live events (SSE)
// @Description  Server-sent events for a room or a channel: new, edited and deleted messages, and moderation events for rooms.
// @Tags         events
// @Produce      text/event-stream
// @Param        slug    path string true  "Room slug"
// @Param        channel path string false "Channel slug"
// @Success      200
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/events/ [get]
// @Router       /salon/{slug}/{channel}/events/ [get]
func StreamEvents(c *gin.Context) {
	target, ok := loadTarget(c)
	if !ok {
		return
	}

	topic := target.Topic()
	client := hub.NewClient()
	hub.GlobalHub.Subscribe(topic, client)
	defer hub.GlobalHub.Unsubscribe(topic, client)

	gauge := metrics.StreamSubscribers.WithLabelValues("sse")
	gauge.Inc()
	defer gauge.Dec()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// StreamEventsWS godoc
// @Summary      Live events (WebSocket)
// @Description  Same events as the SSE stream, one JSON text frame per event. Incoming frames are ignored.
// @Tags         events
// @Param        slug    path string true  "Room slug"
// @Param        channel path string false "Channel slug"
// @Success      101
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/events/ws [get]
// @Router       /salon/{slug}/{channel}/events/ws [get]
func StreamEventsWS(c *gin.Context) {
	target, ok := loadTarget(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	topic := target.Topic()
	client := hub.NewClient()
	hub.GlobalHub.Subscribe(topic, client)
	defer hub.GlobalHub.Unsubscribe(topic, client)

	gauge := metrics.StreamSubscribers.WithLabelValues("ws")
	gauge.Inc()
	defer gauge.Dec()

	// The read loop only exists to notice when the peer goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
