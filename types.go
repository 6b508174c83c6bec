package main

import (
	"encoding/json"
	"time"

	"github.com/ironbrothers/ironbrothers/content"
)

// Control codes used by the council socket.
const (
	CodeOK         = 200
	CodeBadRequest = 400
	CodeTooLong    = 413
	CodeInternal   = 500
)

// ClientMessage is the envelope clients send over the council socket.
// Exactly one of the optional fields is set.
type ClientMessage struct {
	ID string `json:"id,omitempty"`

	// Send posts a chat message to the group council.
	Send *MsgClientSend `json:"send,omitempty"`
	// Typing signals the sender is composing.
	Typing *MsgClientTyping `json:"typing,omitempty"`
}

// MsgClientSend carries the raw message content, either plain text or the
// structured content format.
type MsgClientSend struct {
	Content json.RawMessage `json:"content"`
}

// MsgClientTyping is an empty marker message.
type MsgClientTyping struct{}

// ServerMessage is the envelope the server sends over the council socket.
type ServerMessage struct {
	// Ctrl acknowledges a client message or reports an error.
	Ctrl *MsgCtrl `json:"ctrl,omitempty"`
	// Msg is a council message fanned out to the group.
	Msg *MsgCouncil `json:"msg,omitempty"`
	// Typing relays a member's typing signal.
	Typing *MsgTyping `json:"typing,omitempty"`
}

// MsgCtrl is a control response correlated by the client message ID.
type MsgCtrl struct {
	ID     string         `json:"id,omitempty"`
	Code   int            `json:"code"`
	Text   string         `json:"text,omitempty"`
	Params map[string]any `json:"params,omitempty"`
	Ts     time.Time      `json:"ts"`
}

// MsgCouncil is a decrypted council message ready for clients.
type MsgCouncil struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	UserName  string           `json:"user_name"`
	UserImg   *string          `json:"user_img,omitempty"`
	Kind      string           `json:"kind"`
	Content   *content.Content `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
}

// MsgTyping names the member currently composing.
type MsgTyping struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// CtrlSuccess builds a success control response.
func CtrlSuccess(id string, code int, params map[string]any) *ServerMessage {
	return &ServerMessage{Ctrl: &MsgCtrl{
		ID:     id,
		Code:   code,
		Params: params,
		Ts:     time.Now().UTC(),
	}}
}

// CtrlError builds an error control response.
func CtrlError(id string, code int, text string) *ServerMessage {
	return &ServerMessage{Ctrl: &MsgCtrl{
		ID:   id,
		Code: code,
		Text: text,
		Ts:   time.Now().UTC(),
	}}
}
