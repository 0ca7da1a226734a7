package domain

import (
	"errors"
	"net/url"
	"strings"
)

const MaxRoomIDLen = 64

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

type RoomID string

func (r RoomID) Validate() error {
	if len(strings.TrimSpace(string(r))) == 0 {
		return ErrRoomIDEmpty
	}
	if len(r) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}

// RoomLink builds the shareable address of a room on the given server base URL.
func RoomLink(base string, room RoomID) string {
	return strings.TrimRight(base, "/") + "/room/" + url.PathEscape(string(room))
}
