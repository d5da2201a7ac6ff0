package session

import (
	"sync"

	"github.com/google/uuid"
)

// Session привязывает живое соединение к комнате и отображаемому имени.
type Session struct {
	RoomID          string
	ParticipantName string
}

// Directory отвечает на один вопрос: что убирать, если соединение пропало.
// Запись появляется ровно один раз при успешном входе и снимается ровно
// один раз при дисконнекте.
type Directory struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

func NewDirectory() *Directory {
	return &Directory{sessions: make(map[uuid.UUID]Session)}
}

// Put запоминает сессию соединения. Повторный Put для того же соединения
// перезаписывает запись: активная сессия всегда одна.
func (d *Directory) Put(connID uuid.UUID, roomID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[connID] = Session{RoomID: roomID, ParticipantName: name}
}

func (d *Directory) Lookup(connID uuid.UUID) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[connID]
	return s, ok
}

// Remove снимает сессию и возвращает её. ok == false, если записи не было:
// дисконнект незнакомого соединения — безопасный no-op.
func (d *Directory) Remove(connID uuid.UUID) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[connID]
	if ok {
		delete(d.sessions, connID)
	}
	return s, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}
