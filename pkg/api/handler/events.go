package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/LENAX/function-engine/pkg/core/events"
)

// EventsHandler 执行事件实时推送处理器
type EventsHandler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
}

// NewEventsHandler 创建EventsHandler
func NewEventsHandler(bus *events.Bus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// 管理端走同源或反向代理
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream 推送执行事件流
// GET /cloud-functions/events
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	msgs, err := h.bus.Subscribe(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("subscribe execution events failed")
		return
	}

	// 读循环只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
				msg.Nack()
				return
			}
			msg.Ack()
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
