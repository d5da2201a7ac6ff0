package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/thereayou/watch-together/internal/models"
)

const roomKeyPrefix = "room:"

// RoomCache — второй уровень кэша комнат в Redis. Переживает рестарт
// процесса и экономит походы в Postgres при ленивой загрузке.
// Все операции best-effort: ошибка Redis не должна ронять реестр.
type RoomCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomCache(client *redis.Client, ttl time.Duration) *RoomCache {
	return &RoomCache{client: client, ttl: ttl}
}

type roomSnapshot struct {
	RoomID       string   `json:"room_id"`
	RoomName     string   `json:"room_name"`
	AdminName    string   `json:"admin_name"`
	Participants []string `json:"participants"`
}

// Get возвращает комнату из Redis или (nil, nil) при промахе.
func (c *RoomCache) Get(roomID string) (*models.Room, error) {
	data, err := c.client.Get(context.Background(), roomKeyPrefix+roomID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var snap roomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	room := &models.Room{
		RoomID:    snap.RoomID,
		RoomName:  snap.RoomName,
		AdminName: snap.AdminName,
	}
	room.SetParticipants(snap.Participants)
	return room, nil
}

func (c *RoomCache) Set(room *models.Room) error {
	snap := roomSnapshot{
		RoomID:       room.RoomID,
		RoomName:     room.RoomName,
		AdminName:    room.AdminName,
		Participants: room.ParticipantList(),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(context.Background(), roomKeyPrefix+room.RoomID, data, c.ttl).Err()
}

func (c *RoomCache) Delete(roomID string) error {
	return c.client.Del(context.Background(), roomKeyPrefix+roomID).Err()
}
