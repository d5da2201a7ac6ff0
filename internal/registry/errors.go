package registry

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyExists = errors.New("room already exists")
	ErrNameTaken     = errors.New("participant already in the room")
)
