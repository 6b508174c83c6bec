package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironbrothers/ironbrothers/redis"
)

// Hub tracks live council sockets grouped by their brotherhood.
type Hub struct {
	// Sessions indexed by group, then session ID. A user may hold several
	// sockets, each lives in its own entry.
	rooms map[uuid.UUID]map[string]*Session

	mu sync.RWMutex

	register   chan *Session
	unregister chan *Session
	shutdown   chan struct{}

	// Redis client for cross-node fanout, nil when running standalone
	redis *redis.Client
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[string]*Session),
		register:   make(chan *Session, 256),
		unregister: make(chan *Session, 256),
		shutdown:   make(chan struct{}),
	}
}

// SetRedis sets the Redis client for cross-node fanout.
func (h *Hub) SetRedis(r *redis.Client) {
	h.redis = r
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case sess := <-h.register:
			h.addSession(sess)

		case sess := <-h.unregister:
			h.removeSession(sess)

		case <-h.shutdown:
			h.closeAllSessions()
			return
		}
	}
}

// Shutdown gracefully shuts down the hub.
func (h *Hub) Shutdown() {
	close(h.shutdown)
}

// Register adds a session to the hub. Non-blocking: a full buffer spawns a
// goroutine instead of stalling the caller.
func (h *Hub) Register(sess *Session) {
	select {
	case h.register <- sess:
	default:
		go func() { h.register <- sess }()
	}
}

// Unregister removes a session from the hub. Non-blocking like Register so
// closing sockets never leak.
func (h *Hub) Unregister(sess *Session) {
	select {
	case h.unregister <- sess:
	default:
		go func() { h.unregister <- sess }()
	}
}

func (h *Hub) addSession(sess *Session) {
	h.mu.Lock()
	room := h.rooms[sess.groupID]
	if room == nil {
		room = make(map[string]*Session)
		h.rooms[sess.groupID] = room
	}
	room[sess.id] = sess
	h.mu.Unlock()

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.redis.SetOnline(ctx, sess.userID.String()); err != nil {
			log.Printf("hub: set online: %v", err)
		}
	}
}

func (h *Hub) removeSession(sess *Session) {
	h.mu.Lock()
	lastSocket := true
	if room, ok := h.rooms[sess.groupID]; ok {
		delete(room, sess.id)
		if len(room) == 0 {
			delete(h.rooms, sess.groupID)
		}
		for _, s := range room {
			if s.userID == sess.userID {
				lastSocket = false
				break
			}
		}
	}
	h.mu.Unlock()

	if lastSocket && h.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.redis.SetOffline(ctx, sess.userID.String()); err != nil {
			log.Printf("hub: set offline: %v", err)
		}
	}
}

func (h *Hub) closeAllSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range h.rooms {
		for _, sess := range room {
			sess.Close()
		}
	}
	h.rooms = make(map[uuid.UUID]map[string]*Session)
}

// SessionCount returns the total number of live sockets.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// BroadcastLocal delivers a message to every local socket in a group,
// skipping one session (usually the sender, which already has the message).
func (h *Hub) BroadcastLocal(groupID uuid.UUID, msg *ServerMessage, skipSession string) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.rooms[groupID]))
	for _, sess := range h.rooms[groupID] {
		if sess.id != skipSession {
			sessions = append(sessions, sess)
		}
	}
	h.mu.RUnlock()

	for _, sess := range sessions {
		sess.Send(msg)
	}
}

// councilPayload wraps a server message with its group for pub/sub routing.
type councilPayload struct {
	GroupID string         `json:"groupId"`
	Message *ServerMessage `json:"message"`
}

// Broadcast fans a message out to a group: local sockets directly, remote
// nodes through Redis.
func (h *Hub) Broadcast(ctx context.Context, groupID uuid.UUID, msg *ServerMessage, skipSession string) {
	h.BroadcastLocal(groupID, msg, skipSession)

	if h.redis != nil {
		payload := councilPayload{GroupID: groupID.String(), Message: msg}
		if err := h.redis.Publish(ctx, "council", "council", payload); err != nil {
			log.Printf("hub: publish to council channel: %v", err)
		}
	}
}

// HandlePubSubMessage delivers a message published by another node to the
// local sockets of its group.
func (h *Hub) HandlePubSubMessage(msg *redis.Message) {
	if msg.Type != "council" {
		return
	}

	var payload councilPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("hub: malformed pub/sub payload: %v", err)
		return
	}

	groupID, err := uuid.Parse(payload.GroupID)
	if err != nil {
		log.Printf("hub: invalid group ID in pub/sub payload: %v", err)
		return
	}

	h.BroadcastLocal(groupID, payload.Message, "")
}
