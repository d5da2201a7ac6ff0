package handlers

import (
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/watch-together/internal/handlers/dto"
	"github.com/thereayou/watch-together/internal/registry"
	"github.com/thereayou/watch-together/pkg/auth"
)

type RoomHandler struct {
	reg     *registry.Registry
	tickets *auth.TicketManager
}

func NewRoomHandler(reg *registry.Registry, tickets *auth.TicketManager) *RoomHandler {
	return &RoomHandler{reg: reg, tickets: tickets}
}

// CreateRoom создает новую комнату. Поля принимаются и из JSON-тела,
// и из query-параметров — старые клиенты слали и так, и так.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.RoomID == "" && req.RoomName == "") {
		req.RoomID = c.Query("room_id")
		req.RoomName = c.Query("room_name")
		req.AdminName = c.Query("admin_name")
	}

	if req.RoomName == "" || req.AdminName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	if err := validateName(req.AdminName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RoomID == "" {
		req.RoomID = generateRoomID()
	}

	room, err := h.reg.CreateRoom(req.RoomID, req.RoomName, req.AdminName)
	if err != nil {
		log.Printf("Failed to create room %s: %v", req.RoomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	ticket, err := h.tickets.Generate(room.RoomID, req.AdminName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Room created successfully",
		"data": dto.RoomResponse{
			RoomID:       room.RoomID,
			RoomName:     room.RoomName,
			AdminName:    room.AdminName,
			Participants: room.ParticipantList(),
		},
		"ticket": ticket,
	})
}

// JoinRoom добавляет участника в существующую комнату
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req dto.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	if err := validateName(req.ParticipantName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participants, err := h.reg.AddParticipant(req.RoomID, req.ParticipantName)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		case errors.Is(err, registry.ErrNameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Participant already in the room"})
		default:
			log.Printf("Failed to join room %s: %v", req.RoomID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		}
		return
	}

	room, err := h.reg.EnsureLoaded(req.RoomID)
	if err != nil {
		log.Printf("Failed to load room %s after join: %v", req.RoomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	ticket, err := h.tickets.Generate(req.RoomID, req.ParticipantName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Joined room successfully",
		"data": dto.JoinRoomResponse{
			RoomName:     room.RoomName,
			AdminName:    room.AdminName,
			Participants: participants,
		},
		"ticket": ticket,
	})
}

// GetRoom отдаёт снимок комнаты — для повторного входа и опроса состава
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.reg.EnsureLoaded(roomID)
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		log.Printf("Failed to load room %s: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": dto.RoomResponse{
			RoomID:       room.RoomID,
			RoomName:     room.RoomName,
			AdminName:    room.AdminName,
			Participants: room.ParticipantList(),
		},
	})
}

// validateName отбрасывает имена, которые не переживут сериализацию
// состава строкой через запятую.
func validateName(name string) error {
	if strings.Contains(name, ",") {
		return errors.New("name must not contain commas")
	}
	return nil
}

const roomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateRoomID выдаёт случайный 9-символьный идентификатор комнаты.
// Используется, когда клиент не прислал свой.
func generateRoomID() string {
	b := make([]byte, 9)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomIDAlphabet))))
		if err != nil {
			log.Panicf("Failed to generate room id: %v", err)
		}
		b[i] = roomIDAlphabet[n.Int64()]
	}
	return string(b)
}
