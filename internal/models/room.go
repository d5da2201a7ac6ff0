package models

import (
	"strings"
	"time"
)

// Room — комната для совместного просмотра. RoomID задаётся клиентом
// (или генерируется сервером) и служит внешним ключом комнаты.
type Room struct {
	ID           uint   `gorm:"primaryKey"`
	RoomID       string `gorm:"uniqueIndex;not null"`
	RoomName     string `gorm:"not null"`
	AdminName    string `gorm:"not null"`
	Participants string `gorm:"type:text"`
	CreatedAt    time.Time
}

// ParticipantList возвращает список участников в порядке входа.
// В базе список хранится одной строкой через запятую.
func (r *Room) ParticipantList() []string {
	if r.Participants == "" {
		return []string{}
	}
	return strings.Split(r.Participants, ",")
}

// SetParticipants сериализует список участников для хранения.
func (r *Room) SetParticipants(names []string) {
	r.Participants = strings.Join(names, ",")
}

// HasParticipant проверяет, есть ли имя в комнате.
func (r *Room) HasParticipant(name string) bool {
	for _, p := range r.ParticipantList() {
		if p == name {
			return true
		}
	}
	return false
}
