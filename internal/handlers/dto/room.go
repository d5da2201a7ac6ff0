package dto

type CreateRoomRequest struct {
	RoomID    string `json:"room_id" form:"room_id"`
	RoomName  string `json:"room_name" form:"room_name"`
	AdminName string `json:"admin_name" form:"admin_name"`
}

type JoinRoomRequest struct {
	RoomID          string `json:"room_id" binding:"required"`
	ParticipantName string `json:"participant_name" binding:"required"`
}

type RoomResponse struct {
	RoomID       string   `json:"room_id"`
	RoomName     string   `json:"room_name"`
	AdminName    string   `json:"admin_name"`
	Participants []string `json:"participants"`
}

type JoinRoomResponse struct {
	RoomName     string   `json:"room_name"`
	AdminName    string   `json:"admin_name"`
	Participants []string `json:"participants"`
}
