package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/thereayou/watch-together/internal/registry"
	"github.com/thereayou/watch-together/internal/session"
	"github.com/thereayou/watch-together/internal/websocket"
)

// SignalHandler гоняет соединение по состояниям Unjoined -> Joined -> Closed
// и маршрутизирует сигналинг между участниками комнаты. Содержимое
// offer/answer/candidate не трогает.
type SignalHandler struct {
	reg      *registry.Registry
	sessions *session.Directory
	hub      *websocket.Hub
}

func NewSignalHandler(reg *registry.Registry, sessions *session.Directory, hub *websocket.Hub) *SignalHandler {
	return &SignalHandler{reg: reg, sessions: sessions, hub: hub}
}

func (h *SignalHandler) HandleMessage(c *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeCreateRoom:
		return h.handleCreateRoom(c, msg.Data)

	case websocket.TypeJoinRoom:
		return h.handleJoinRoom(c, msg.Data)

	case websocket.TypeOffer, websocket.TypeAnswer, websocket.TypeICECandidate:
		return h.relaySignal(c, msg)

	default:
		return websocket.ErrInvalidMessage
	}
}

// handleCreateRoom обслуживает событие create_room. Отказ — это всегда
// room_created{success:false} только отправителю, состояние комнат не трогаем.
func (h *SignalHandler) handleCreateRoom(c *websocket.Client, data json.RawMessage) error {
	var req websocket.CreateRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return websocket.ErrInvalidMessage
	}

	if req.RoomID == "" || req.RoomName == "" || req.AdminName == "" {
		return c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
			Success: false, RoomID: req.RoomID, Error: "Missing required fields",
		})
	}

	if err := validateName(req.AdminName); err != nil {
		return c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
			Success: false, RoomID: req.RoomID, Error: err.Error(),
		})
	}

	if _, joined := c.Room(); joined {
		return c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
			Success: false, RoomID: req.RoomID, Error: "Already in a room",
		})
	}

	if c.TicketRoom != "" && c.TicketRoom != req.RoomID {
		return c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
			Success: false, RoomID: req.RoomID, Error: "Ticket does not match room",
		})
	}

	room, err := h.reg.CreateRoom(req.RoomID, req.RoomName, req.AdminName)
	attached := false
	var participants []string
	if errors.Is(err, registry.ErrAlreadyExists) {
		// Штатный сценарий браузера: комната уже заведена HTTP-ручкой,
		// сокетное create_room лишь привязывает соединение админа.
		room, err = h.reg.EnsureLoaded(req.RoomID)
		if err == nil {
			if room.AdminName != req.AdminName || h.hub.NameInRoom(req.RoomID, req.AdminName) {
				return c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
					Success: false, RoomID: req.RoomID, Error: "Room already exists",
				})
			}
			attached = true
			participants = room.ParticipantList()
			// Админ мог выпасть из состава после своего дисконнекта
			if !room.HasParticipant(req.AdminName) {
				participants, err = h.reg.AddParticipant(req.RoomID, req.AdminName)
			}
		}
	}
	if err != nil {
		log.Printf("create_room %s failed: %v", req.RoomID, err)
		return c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
			Success: false, RoomID: req.RoomID, Error: "Failed to create room",
		})
	}

	// Список пиров снимаем до входа, как и на join-пути
	peers := h.hub.RoomPeers(room.RoomID, c.ID)

	h.attach(c, room.RoomID, req.AdminName)

	if err := c.SendMessage(websocket.TypeRoomCreated, websocket.RoomCreated{
		Success:   true,
		RoomID:    room.RoomID,
		RoomName:  room.RoomName,
		AdminName: room.AdminName,
	}); err != nil {
		return err
	}

	if attached {
		// Кто-то мог войти раньше админа: ему нужен список для дозвона,
		// а остальным — сигнал готовить офферы на нового пира.
		if err := c.SendMessage(websocket.TypeParticipants, websocket.ParticipantsList{Participants: peers}); err != nil {
			return err
		}
		h.broadcast(room.RoomID, websocket.TypeRoomUpdate, websocket.RoomUpdate{Participants: participants}, c.ID)
		h.broadcast(room.RoomID, websocket.TypeNewParticipant, websocket.NewParticipant{PeerID: c.ID.String()}, c.ID)
	}
	return nil
}

// handleJoinRoom обслуживает событие join_room: проверка комнаты и имени,
// регистрация сессии, уведомление остальных участников.
func (h *SignalHandler) handleJoinRoom(c *websocket.Client, data json.RawMessage) error {
	var req websocket.JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return websocket.ErrInvalidMessage
	}

	if req.RoomID == "" || req.ParticipantName == "" {
		return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
			Success: false, RoomID: req.RoomID, Error: "Missing required fields",
		})
	}

	if err := validateName(req.ParticipantName); err != nil {
		return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
			Success: false, RoomID: req.RoomID, Error: err.Error(),
		})
	}

	if _, joined := c.Room(); joined {
		return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
			Success: false, RoomID: req.RoomID, Error: "Already in a room",
		})
	}

	if c.TicketRoom != "" && c.TicketRoom != req.RoomID {
		return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
			Success: false, RoomID: req.RoomID, Error: "Ticket does not match room",
		})
	}

	participants, err := h.reg.AddParticipant(req.RoomID, req.ParticipantName)
	if errors.Is(err, registry.ErrNameTaken) {
		if h.hub.NameInRoom(req.RoomID, req.ParticipantName) {
			return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
				Success: false, RoomID: req.RoomID, Error: "Participant already in the room",
			})
		}
		// Имя уже внесено HTTP-ручкой join_room, а живого соединения под
		// ним нет — привязываем без повторного дописывания в состав.
		room, loadErr := h.reg.EnsureLoaded(req.RoomID)
		if loadErr != nil {
			err = loadErr
		} else {
			participants, err = room.ParticipantList(), nil
		}
	}
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
				Success: false, RoomID: req.RoomID, Error: "Room not found",
			})
		}
		log.Printf("join_room %s failed: %v", req.RoomID, err)
		return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
			Success: false, RoomID: req.RoomID, Error: "Failed to join room",
		})
	}

	room, err := h.reg.EnsureLoaded(req.RoomID)
	if err != nil {
		log.Printf("join_room %s: room vanished after join: %v", req.RoomID, err)
		return c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
			Success: false, RoomID: req.RoomID, Error: "Failed to join room",
		})
	}

	// Список пиров снимаем до входа, чтобы не дозваниваться до себя.
	peers := h.hub.RoomPeers(req.RoomID, c.ID)

	h.attach(c, req.RoomID, req.ParticipantName)

	if err := c.SendMessage(websocket.TypeRoomJoined, websocket.RoomJoined{
		Success:  true,
		RoomID:   room.RoomID,
		RoomName: room.RoomName,
	}); err != nil {
		return err
	}

	// Новичку — кого набирать; остальным — обновлённый состав и сигнал
	// готовить оффер на нового пира.
	if err := c.SendMessage(websocket.TypeParticipants, websocket.ParticipantsList{Participants: peers}); err != nil {
		return err
	}

	h.broadcast(req.RoomID, websocket.TypeRoomUpdate, websocket.RoomUpdate{Participants: participants}, c.ID)
	h.broadcast(req.RoomID, websocket.TypeNewParticipant, websocket.NewParticipant{PeerID: c.ID.String()}, c.ID)

	return nil
}

// relaySignal пересылает offer/answer/ice-candidate. peerId в нагрузке
// подменяется на id отправителя; остальное уходит как есть.
func (h *SignalHandler) relaySignal(c *websocket.Client, msg *websocket.Message) error {
	var sig websocket.Signal
	if err := json.Unmarshal(msg.Data, &sig); err != nil {
		return websocket.ErrInvalidMessage
	}

	target := sig.PeerID
	sig.PeerID = c.ID.String()

	data, err := json.Marshal(websocket.Message{Type: msg.Type, Data: mustMarshal(sig)})
	if err != nil {
		return err
	}

	if target == "" {
		roomID, joined := c.Room()
		if !joined {
			return websocket.ErrNotInRoom
		}
		h.hub.SendToRoom(roomID, data, c.ID)
		return nil
	}

	targetID, err := uuid.Parse(target)
	if err != nil {
		return websocket.ErrInvalidMessage
	}

	if err := h.hub.SendToClient(targetID, data); err != nil {
		// Пир уже отвалился — сигнал просто пропадает, это не ошибка
		// отправителя.
		log.Printf("relay %s from %s to %s dropped: %v", msg.Type, c.ID, target, err)
	}
	return nil
}

// HandleDisconnect разбирает за соединением: сессия, состав комнаты,
// уведомление оставшихся. Безопасен при повторном вызове — директория
// сессий отвечает, нужна ли уборка вообще.
func (h *SignalHandler) HandleDisconnect(c *websocket.Client) {
	sess, ok := h.sessions.Remove(c.ID)
	if !ok {
		return
	}

	participants, err := h.reg.RemoveParticipant(sess.RoomID, sess.ParticipantName)
	if err != nil {
		log.Printf("disconnect cleanup for room %s failed: %v", sess.RoomID, err)
	}

	h.hub.LeaveRoom(c, sess.RoomID)

	if err == nil && len(participants) > 0 {
		h.broadcast(sess.RoomID, websocket.TypeRoomUpdate, websocket.RoomUpdate{Participants: participants}, c.ID)
	}
	h.broadcast(sess.RoomID, websocket.TypeUserDisconnected, websocket.UserDisconnected{ID: c.ID.String()}, c.ID)
}

// attach переводит соединение в состояние Joined: сессия в директории,
// комната на клиенте, соединение в relay-группе.
func (h *SignalHandler) attach(c *websocket.Client, roomID, name string) {
	h.sessions.Put(c.ID, roomID, name)
	c.SetRoom(roomID, name)
	h.hub.JoinRoom(c, roomID)
}

func (h *SignalHandler) broadcast(roomID string, msgType websocket.MessageType, payload interface{}, exclude uuid.UUID) {
	data, err := json.Marshal(websocket.Message{Type: msgType, Data: mustMarshal(payload)})
	if err != nil {
		log.Printf("broadcast marshal failed: %v", err)
		return
	}
	h.hub.SendToRoom(roomID, data, exclude)
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("marshal failed: %v", err)
		return json.RawMessage("{}")
	}
	return data
}
