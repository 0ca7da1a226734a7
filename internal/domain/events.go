package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyChat          = errors.New("chat message is empty")
	ErrNotDataURI         = errors.New("file data is not a data URI")
	ErrUnknownMessageType = errors.New("unknown chat message type")
)

// DrawEvent is one line-segment endpoint; a run of them rebuilds a stroke.
type DrawEvent struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"width"`
}

type ChatType string

const (
	ChatText  ChatType = "text"
	ChatImage ChatType = "image"
)

// ChatMessage carries a display label chosen by the sender. The relay never checks it.
type ChatMessage struct {
	User     string   `json:"user"`
	Type     ChatType `json:"type"`
	Text     string   `json:"text,omitempty"`
	FileData string   `json:"fileData,omitempty"`
}

func NewTextMessage(user, text string) (ChatMessage, error) {
	m := ChatMessage{User: user, Type: ChatText, Text: text}
	return m, m.Validate()
}

func NewImageMessage(user, dataURI string) (ChatMessage, error) {
	m := ChatMessage{User: user, Type: ChatImage, FileData: dataURI}
	return m, m.Validate()
}

func (m ChatMessage) Validate() error {
	switch m.Type {
	case ChatText:
		if strings.TrimSpace(m.Text) == "" {
			return ErrEmptyChat
		}
	case ChatImage:
		if !strings.HasPrefix(m.FileData, "data:") {
			return ErrNotDataURI
		}
	default:
		return ErrUnknownMessageType
	}
	return nil
}
