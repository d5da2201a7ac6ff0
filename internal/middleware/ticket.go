package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/watch-together/pkg/auth"
)

const (
	RoomIDKey          = "roomID"
	ParticipantNameKey = "participantName"
)

// WSTicketMiddleware проверяет билет на вход перед websocket-апгрейдом.
// Билет берётся из query-параметра (браузерный WebSocket не умеет
// выставлять заголовки) или из Authorization header.
func WSTicketMiddleware(tickets *auth.TicketManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticket := c.Query("ticket")
		if ticket == "" {
			if fromHeader, err := auth.ExtractTokenFromHeader(c.Request); err == nil {
				ticket = fromHeader
			}
		}

		if ticket == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing ticket"})
			c.Abort()
			return
		}

		claims, err := tickets.Verify(ticket)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ticket"})
			c.Abort()
			return
		}

		c.Set(RoomIDKey, claims.Subject)
		c.Set(ParticipantNameKey, claims.ParticipantName)
		c.Next()
	}
}
