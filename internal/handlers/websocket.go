package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thereayou/watch-together/internal/middleware"
	ws "github.com/thereayou/watch-together/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub           *ws.Hub
	signalHandler *SignalHandler
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler создает новый WebSocket handler
func NewWebSocketHandler(hub *ws.Hub, signalHandler *SignalHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		signalHandler: signalHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Проверить origin в prod
				return true
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	ticketRoom := c.GetString(middleware.RoomIDKey)
	if ticketRoom == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn)
	client.TicketRoom = ticketRoom

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.signalHandler)
}
