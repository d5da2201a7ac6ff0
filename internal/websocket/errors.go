package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrTargetGone      = errors.New("relay target is no longer connected")
	ErrNotInRoom       = errors.New("connection has not joined a room")
)
