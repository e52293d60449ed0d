package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"GhostSniper/internal/domain/models"
	"GhostSniper/internal/service/broadcast"
	xlogger "GhostSniper/pkg/logger"
)

type EventHub interface {
	Subscribe(s broadcast.Subscriber) broadcast.Handle
	Unsubscribe(h broadcast.Handle)
}

// StreamHandler relays hub events to websocket clients as {"topic":"agent","payload":event}.
type StreamHandler struct {
	logger   *xlogger.Logger
	hub      EventHub
	buffer   int
	upgrader websocket.Upgrader
}

func NewStreamHandler(logger *xlogger.Logger, hub EventHub, buffer int) *StreamHandler {
	return &StreamHandler{
		logger: logger,
		hub:    hub,
		buffer: buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Stream)
}

func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	sub := broadcast.NewChannelSubscriber(h.buffer)
	handle := h.hub.Subscribe(sub)
	defer func() {
		h.hub.Unsubscribe(handle)
		sub.Close()
	}()

	// Reader: clients send nothing meaningful; a read error means they left.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug("websocket client connected", xlogger.String("remote", c.RealIP()))
	for {
		select {
		case <-gone:
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				// pruned by the hub after a full buffer
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"), time.Now().Add(time.Second))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(models.Envelope{Topic: "agent", Payload: ev}); err != nil {
				return nil
			}
		}
	}
}
