package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomOrUserNotFound = errors.New("room or user not found")
	ErrRoomAlreadyExists  = errors.New("room already exists")
	ErrInvalidRoomName    = errors.New("invalid room name")
	ErrMessageNotFound    = errors.New("message not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidContent     = errors.New("invalid message content")
	ErrReadOnlyTx         = errors.New("store transaction is read-only")
	ErrIdentityNotFound   = errors.New("identity not found")
)
