package main

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024
	// Send buffer size
	sendBufferSize = 64
)

// Session is one council socket. The user is authenticated by their session
// cookie before the upgrade, so identity and group never change while the
// socket lives.
type Session struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	send     chan *ServerMessage
	handlers *Handlers

	userID   uuid.UUID
	groupID  uuid.UUID
	userName string
	userImg  *string

	closing int32
	once    sync.Once
}

// NewSession creates a council socket session for an authenticated member.
func NewSession(hub *Hub, conn *websocket.Conn, handlers *Handlers,
	userID, groupID uuid.UUID, userName string, userImg *string) *Session {
	return &Session{
		id:       uuid.New().String(),
		hub:      hub,
		conn:     conn,
		send:     make(chan *ServerMessage, sendBufferSize),
		handlers: handlers,
		userID:   userID,
		groupID:  groupID,
		userName: userName,
		userImg:  userImg,
	}
}

// Send queues a message for the client. Safe from multiple goroutines.
func (s *Session) Send(msg *ServerMessage) {
	// Close may shut the channel between the flag check and the send, the
	// recover absorbs that race without a per-send mutex.
	defer func() {
		if r := recover(); r != nil {
		}
	}()

	if atomic.LoadInt32(&s.closing) == 1 {
		return
	}
	select {
	case s.send <- msg:
	default:
		// Buffer full, the client stopped reading
		go s.Close()
	}
}

// Close closes the session. Safe to call multiple times.
func (s *Session) Close() {
	s.once.Do(func() {
		atomic.StoreInt32(&s.closing, 1)
		close(s.send)
		s.conn.Close()
	})
}

// Run starts the session's read and write pumps.
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
}

func (s *Session) readPump() {
	defer func() {
		s.hub.Unregister(s)
		s.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("council: socket closed unexpectedly: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.Send(CtrlError("", CodeBadRequest, "malformed message"))
			continue
		}

		s.dispatch(&msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) dispatch(msg *ClientMessage) {
	switch {
	case msg.Send != nil:
		s.handlers.HandleCouncilSend(s, msg)
	case msg.Typing != nil:
		s.handlers.HandleCouncilTyping(s, msg)
	default:
		s.Send(CtrlError(msg.ID, CodeBadRequest, "unknown message type"))
	}
}
