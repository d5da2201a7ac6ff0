package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/watch-together/internal/database"
	"github.com/thereayou/watch-together/internal/handlers"
	"github.com/thereayou/watch-together/internal/middleware"
	"github.com/thereayou/watch-together/pkg/auth"
)

func APIEndpoints(r *gin.Engine, roomH *handlers.RoomHandler, wsH *handlers.WebSocketHandler, tickets *auth.TicketManager, db *database.Database, rdb *redis.Client) {
	// Управляющие ручки комнат
	r.POST("/create_room", roomH.CreateRoom)
	r.POST("/join_room", roomH.JoinRoom)
	r.GET("/rooms/:id", roomH.GetRoom)

	// Сигналинг: вход только с билетом
	r.GET("/ws", middleware.WSTicketMiddleware(tickets), wsH.HandleWebSocket)

	r.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db down"})
			return
		}
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
