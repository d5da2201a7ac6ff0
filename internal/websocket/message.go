package websocket

import "encoding/json"

// MessageType определяет типы сообщений
type MessageType string

const (
	// Системные типы
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	// Клиент -> сервер
	TypeCreateRoom   MessageType = "create_room"
	TypeJoinRoom     MessageType = "join_room"
	TypeOffer        MessageType = "offer"
	TypeAnswer       MessageType = "answer"
	TypeICECandidate MessageType = "ice-candidate"

	// Сервер -> клиент
	TypeRoomCreated      MessageType = "room_created"
	TypeRoomJoined       MessageType = "room_joined"
	TypeRoomUpdate       MessageType = "room_update"
	TypeParticipants     MessageType = "participants"
	TypeNewParticipant   MessageType = "new-participant"
	TypeUserDisconnected MessageType = "user-disconnected"
)

// Message — конверт протокола. Полезная нагрузка сигналинга лежит в Data
// и сервером не интерпретируется, только маршрутизируется.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CreateRoomRequest struct {
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	AdminName string `json:"admin_name"`
}

type JoinRoomRequest struct {
	RoomID          string `json:"room_id"`
	ParticipantName string `json:"participant_name"`
}

type RoomCreated struct {
	Success   bool   `json:"success"`
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name,omitempty"`
	AdminName string `json:"admin_name,omitempty"`
	Error     string `json:"error,omitempty"`
}

type RoomJoined struct {
	Success  bool   `json:"success"`
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name,omitempty"`
	Error    string `json:"error,omitempty"`
}

type RoomUpdate struct {
	Participants []string `json:"participants"`
}

// Signal — offer/answer/ice-candidate. PeerID при отправке указывает
// адресата; при доставке сервер подменяет его на id отправителя, чтобы
// получателю было куда отвечать. Остальные поля прозрачны.
type Signal struct {
	PeerID    string          `json:"peerId"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type NewParticipant struct {
	PeerID string `json:"peerId"`
}

type ParticipantsList struct {
	Participants []string `json:"participants"`
}

type UserDisconnected struct {
	ID string `json:"id"`
}
