package database

import (
	"time"

	"github.com/thereayou/watch-together/internal/models"
)

// CreateRoom записывает новую комнату с админом как единственным участником.
// Возвращает ErrConflict, если room_id уже занят.
func (d *Database) CreateRoom(roomID, roomName, adminName string) (*models.Room, error) {
	room := &models.Room{
		RoomID:    roomID,
		RoomName:  roomName,
		AdminName: adminName,
		CreatedAt: time.Now(),
	}
	room.SetParticipants([]string{adminName})

	if err := d.db.Create(room).Error; err != nil {
		return nil, translate(err)
	}
	return room, nil
}

func (d *Database) GetRoom(roomID string) (*models.Room, error) {
	var room models.Room
	if err := d.db.First(&room, "room_id = ?", roomID).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

// GetAllRooms читает все комнаты; используется один раз для прогрева кэша.
func (d *Database) GetAllRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := d.db.Find(&rooms).Error; err != nil {
		return nil, translate(err)
	}
	return rooms, nil
}

// UpdateParticipants целиком заменяет состав комнаты. Идемпотентно.
func (d *Database) UpdateParticipants(roomID string, participants []string) error {
	room := models.Room{}
	room.SetParticipants(participants)

	res := d.db.Model(&models.Room{}).Where("room_id = ?", roomID).Update("participants", room.Participants)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) DeleteRoom(roomID string) error {
	if err := d.db.Delete(&models.Room{}, "room_id = ?", roomID).Error; err != nil {
		return translate(err)
	}
	return nil
}
