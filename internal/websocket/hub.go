package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub держит все живые соединения и relay-группы комнат.
// Состояние комнат (состав, имена) живёт не здесь, а в реестре;
// hub знает только кому какие байты доставить.
type Hub struct {
	clients map[uuid.UUID]*Client

	// Соединения по комнатам — broadcast-адресаты room-событий
	rooms map[string]map[uuid.UUID]*Client

	// Каналы для регистрации/отмены регистрации
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		rooms:      make(map[string]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.rooms = make(map[string]map[uuid.UUID]*Client)
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента. После Stop канал уже никто
// не читает — выходим по контексту, иначе ReadPump повиснет в defer.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	log.Printf("Client registered: %s", client.ID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if roomID, ok := client.Room(); ok {
		h.removeFromRoomUnsafe(client, roomID)
	}

	delete(h.clients, client.ID)
	close(client.Send)

	log.Printf("Client unregistered: %s", client.ID)
}

// JoinRoom добавляет соединение в relay-группу комнаты
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}
	h.rooms[roomID][client.ID] = client
}

// LeaveRoom убирает соединение из relay-группы комнаты
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID string) {
	if room, ok := h.rooms[roomID]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToClient доставляет сообщение одному соединению.
// ErrTargetGone, если адресат уже отвалился. Отправка идёт под RLock:
// unregisterClient закрывает Send под write-lock, поэтому запись в
// закрытый канал исключена.
func (h *Hub) SendToClient(id uuid.UUID, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[id]
	if !ok {
		return ErrTargetGone
	}

	select {
	case client.Send <- message:
		return nil
	default:
		return ErrClientQueueFull
	}
}

// SendToRoom отправляет сообщение всем соединениям комнаты, кроме exclude.
// uuid.Nil в exclude — рассылка всем.
func (h *Hub) SendToRoom(roomID string, message []byte, exclude uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.ID == exclude {
				continue
			}
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

// RoomPeers возвращает id соединений в комнате, кроме exclude.
// Новый участник получает этот список, чтобы дозвониться до остальных.
func (h *Hub) RoomPeers(roomID string, exclude uuid.UUID) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	peers := make([]string, 0)
	if room, ok := h.rooms[roomID]; ok {
		for id := range room {
			if id != exclude {
				peers = append(peers, id.String())
			}
		}
	}
	return peers
}

// NameInRoom сообщает, держит ли имя кто-то из живых соединений комнаты.
func (h *Hub) NameInRoom(roomID, name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.Name() == name {
				return true
			}
		}
	}
	return false
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{Type: TypePing}
	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}
