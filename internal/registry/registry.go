package registry

import (
	"errors"
	"log"
	"sync"

	"github.com/thereayou/watch-together/internal/database"
	"github.com/thereayou/watch-together/internal/models"
)

// Store — контракт долговременного хранилища комнат.
// Реализуется *database.Database и in-memory фейком в тестах.
type Store interface {
	CreateRoom(roomID, roomName, adminName string) (*models.Room, error)
	GetRoom(roomID string) (*models.Room, error)
	GetAllRooms() ([]models.Room, error)
	UpdateParticipants(roomID string, participants []string) error
	DeleteRoom(roomID string) error
}

// entry — одна комната в кэше. Мьютекс записи сериализует все мутации
// и ленивую загрузку этой комнаты; разные комнаты друг друга не ждут.
type entry struct {
	mu   sync.Mutex
	room *models.Room // nil — ещё не загружена из хранилища
	gone bool         // комната удалена, запись больше не в карте
}

// Registry — авторитетный кэш активных комнат поверх Store.
// Политика write-through: сначала хранилище, потом память.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry

	store Store
	cache *RoomCache // второй уровень в Redis, может быть nil
}

func New(store Store, cache *RoomCache) *Registry {
	return &Registry{
		rooms: make(map[string]*entry),
		store: store,
		cache: cache,
	}
}

// Prime прогревает кэш всеми комнатами из хранилища. Вызывается на старте.
func (r *Registry) Prime() error {
	rooms, err := r.store.GetAllRooms()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range rooms {
		room := rooms[i]
		r.rooms[room.RoomID] = &entry{room: &room}
	}
	log.Printf("Registry primed with %d rooms", len(rooms))
	return nil
}

// EnsureLoaded возвращает снимок комнаты, при необходимости подняв её
// из Redis или хранилища. ErrRoomNotFound, если комнаты нет нигде.
func (r *Registry) EnsureLoaded(roomID string) (*models.Room, error) {
	for {
		e := r.getEntry(roomID)
		e.mu.Lock()
		if e.gone {
			// Комнату удалили, пока мы ждали мьютекс. Запись уже не в
			// карте, заходим заново за свежей.
			e.mu.Unlock()
			continue
		}

		if err := r.loadLocked(e, roomID); err != nil {
			e.mu.Unlock()
			return nil, err
		}

		snapshot := *e.room
		e.mu.Unlock()
		return &snapshot, nil
	}
}

// CreateRoom создаёт комнату с составом [adminName]. Сначала запись в
// хранилище, потом в кэш; при занятом room_id — ErrAlreadyExists.
func (r *Registry) CreateRoom(roomID, roomName, adminName string) (*models.Room, error) {
	for {
		e := r.getEntry(roomID)
		e.mu.Lock()
		if e.gone {
			e.mu.Unlock()
			continue
		}

		if e.room != nil {
			e.mu.Unlock()
			return nil, ErrAlreadyExists
		}

		room, err := r.store.CreateRoom(roomID, roomName, adminName)
		if err != nil {
			r.dropEntryLocked(e, roomID)
			e.mu.Unlock()
			if errors.Is(err, database.ErrConflict) {
				return nil, ErrAlreadyExists
			}
			return nil, err
		}

		e.room = room
		r.cacheSet(room)

		snapshot := *room
		e.mu.Unlock()
		return &snapshot, nil
	}
}

// AddParticipant дописывает имя в конец состава. ErrNameTaken при повторе.
// Возвращает обновлённый состав.
func (r *Registry) AddParticipant(roomID, name string) ([]string, error) {
	for {
		e := r.getEntry(roomID)
		e.mu.Lock()
		if e.gone {
			e.mu.Unlock()
			continue
		}

		if err := r.loadLocked(e, roomID); err != nil {
			e.mu.Unlock()
			return nil, err
		}

		if e.room.HasParticipant(name) {
			e.mu.Unlock()
			return nil, ErrNameTaken
		}

		participants := append(e.room.ParticipantList(), name)
		if err := r.store.UpdateParticipants(roomID, participants); err != nil {
			e.mu.Unlock()
			return nil, err
		}

		e.room.SetParticipants(participants)
		r.cacheSet(e.room)
		e.mu.Unlock()
		return participants, nil
	}
}

// RemoveParticipant убирает имя из состава; опустевшая комната удаляется
// из хранилища и кэша. Отсутствие комнаты или имени — тихий no-op:
// гонки с дисконнектами здесь штатные.
func (r *Registry) RemoveParticipant(roomID, name string) ([]string, error) {
	for {
		e := r.getEntry(roomID)
		e.mu.Lock()
		if e.gone {
			e.mu.Unlock()
			continue
		}

		if err := r.loadLocked(e, roomID); err != nil {
			e.mu.Unlock()
			if errors.Is(err, ErrRoomNotFound) {
				return nil, nil
			}
			return nil, err
		}

		old := e.room.ParticipantList()
		participants := make([]string, 0, len(old))
		found := false
		for _, p := range old {
			if p == name && !found {
				found = true
				continue
			}
			participants = append(participants, p)
		}
		if !found {
			e.mu.Unlock()
			return old, nil
		}

		if len(participants) == 0 {
			if err := r.store.DeleteRoom(roomID); err != nil {
				e.mu.Unlock()
				return nil, err
			}
			r.cacheDelete(roomID)
			r.dropEntryLocked(e, roomID)
			e.mu.Unlock()
			return participants, nil
		}

		if err := r.store.UpdateParticipants(roomID, participants); err != nil {
			e.mu.Unlock()
			return nil, err
		}

		e.room.SetParticipants(participants)
		r.cacheSet(e.room)
		e.mu.Unlock()
		return participants, nil
	}
}

// getEntry возвращает запись комнаты, создавая заглушку при отсутствии.
// Конкурентные вызовы для одного roomID сходятся на одной записи.
func (r *Registry) getEntry(roomID string) *entry {
	r.mu.RLock()
	e, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[roomID]; ok {
		return e
	}
	e = &entry{}
	r.rooms[roomID] = e
	return e
}

// loadLocked поднимает комнату в запись: Redis, затем хранилище.
// Вызывается строго под e.mu.
func (r *Registry) loadLocked(e *entry, roomID string) error {
	if e.room != nil {
		return nil
	}

	if r.cache != nil {
		room, err := r.cache.Get(roomID)
		if err != nil {
			log.Printf("Redis lookup failed for room %s: %v", roomID, err)
		} else if room != nil {
			e.room = room
			return nil
		}
	}

	room, err := r.store.GetRoom(roomID)
	if err != nil {
		r.dropEntryLocked(e, roomID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	e.room = room
	r.cacheSet(room)
	return nil
}

// dropEntryLocked выкидывает запись из карты; вызывается под e.mu.
func (r *Registry) dropEntryLocked(e *entry, roomID string) {
	e.gone = true
	e.room = nil
	r.mu.Lock()
	if cur, ok := r.rooms[roomID]; ok && cur == e {
		delete(r.rooms, roomID)
	}
	r.mu.Unlock()
}

func (r *Registry) cacheSet(room *models.Room) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(room); err != nil {
		log.Printf("Redis write failed for room %s: %v", room.RoomID, err)
	}
}

func (r *Registry) cacheDelete(roomID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(roomID); err != nil {
		log.Printf("Redis delete failed for room %s: %v", roomID, err)
	}
}
