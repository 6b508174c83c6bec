package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ironbrothers/ironbrothers/content"
	"github.com/ironbrothers/ironbrothers/middleware"
	"github.com/ironbrothers/ironbrothers/store"
)

// HandleGetCouncilMessages processes GET /council/messages: the caller's
// group chat history, decrypted and decoded.
func (h *Handlers) HandleGetCouncilMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)

	groupID, err := h.groupOf(ctx, w, userID)
	if err != nil {
		return
	}

	stored, err := h.db.GetCouncilMessages(ctx, groupID, h.cfg.Limits.ChatHistoryLimit)
	if err != nil {
		h.dbError(w, "council history", err)
		return
	}

	messages := make([]*MsgCouncil, 0, len(stored))
	for i := range stored {
		msg, err := h.decodeCouncilMessage(&stored[i])
		if err != nil {
			// A message that no longer decrypts is dropped, not fatal.
			log.Printf("council history: undecodable message %s: %v", shortID(stored[i].ID), err)
			continue
		}
		messages = append(messages, msg)
	}
	writeJSON(w, http.StatusOK, messages)
}

// decodeCouncilMessage decrypts and parses one stored message.
func (h *Handlers) decodeCouncilMessage(m *store.CouncilMessageWithUser) (*MsgCouncil, error) {
	plaintext, err := h.encryptor.Decrypt(m.Content)
	if err != nil {
		return nil, err
	}
	c, err := content.Parse(plaintext)
	if err != nil {
		return nil, err
	}
	return &MsgCouncil{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		UserName:  m.UserName,
		UserImg:   m.UserImg,
		Kind:      m.Kind,
		Content:   c,
		Timestamp: m.CreatedAt,
	}, nil
}

// NewUpgrader builds the WebSocket upgrader with origin checking.
func (h *Handlers) NewUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     middleware.CheckOrigin(h.cfg.Server.AllowedOrigins),
	}
}

// HandleCouncilWS processes GET /council/ws: upgrades an authenticated
// member's connection and joins them to their group's room.
func (h *Handlers) HandleCouncilWS(upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := userIDFromContext(ctx)

		user, err := h.db.GetUserByID(ctx, userID)
		if err != nil {
			h.dbError(w, "council ws", err)
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "No autenticado")
			return
		}
		if user.GroupID == nil {
			writeError(w, http.StatusBadRequest, "No perteneces a ningún grupo")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client.
			log.Printf("council ws: upgrade failed: %v", err)
			return
		}

		sess := NewSession(h.hub, conn, h, user.ID, *user.GroupID, user.Name, user.Avatar)
		h.hub.Register(sess)
		log.Printf("council ws: %s joined group %s", shortID(user.ID), shortID(*user.GroupID))
		go sess.Run()
	}
}

// HandleCouncilSend validates, stores and fans out a member's chat message.
func (h *Handlers) HandleCouncilSend(s *Session, msg *ClientMessage) {
	c, err := content.Parse(msg.Send.Content)
	if err != nil {
		s.Send(CtrlError(msg.ID, CodeBadRequest, "invalid message content"))
		return
	}
	if err := c.Validate(h.cfg.Limits.MaxMessageGraphemes); err != nil {
		code := CodeBadRequest
		if errors.Is(err, content.ErrContentTooLong) {
			code = CodeTooLong
		}
		s.Send(CtrlError(msg.ID, code, err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored, err := h.storeCouncilMessage(ctx, s.groupID, s.userID, store.MessageUsuario, c)
	if err != nil {
		log.Printf("council send: %v", err)
		s.Send(CtrlError(msg.ID, CodeInternal, "message not saved"))
		return
	}

	out := &ServerMessage{Msg: &MsgCouncil{
		ID:        stored.ID.String(),
		UserID:    s.userID.String(),
		UserName:  s.userName,
		UserImg:   s.userImg,
		Kind:      store.MessageUsuario,
		Content:   c,
		Timestamp: stored.CreatedAt,
	}}

	// The sender gets the ack with the message ID, everyone else the message.
	s.Send(CtrlSuccess(msg.ID, CodeOK, map[string]any{
		"id": stored.ID.String(),
		"ts": stored.CreatedAt,
	}))
	h.hub.Broadcast(ctx, s.groupID, out, s.id)
}

// HandleCouncilTyping relays a typing signal to the rest of the group.
// Typing is ephemeral: never stored, never crosses nodes.
func (h *Handlers) HandleCouncilTyping(s *Session, msg *ClientMessage) {
	h.hub.BroadcastLocal(s.groupID, &ServerMessage{Typing: &MsgTyping{
		UserID:   s.userID.String(),
		UserName: s.userName,
	}}, s.id)
}

// storeCouncilMessage encrypts and persists a council message.
func (h *Handlers) storeCouncilMessage(ctx context.Context, groupID, userID uuid.UUID,
	kind string, c *content.Content) (*store.CouncilMessage, error) {

	plaintext, err := c.Marshal()
	if err != nil {
		return nil, err
	}
	ciphertext, err := h.encryptor.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	m := &store.CouncilMessage{
		GroupID: groupID,
		UserID:  userID,
		Kind:    kind,
		Content: ciphertext,
	}
	if err := h.db.SaveCouncilMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// announceCouncilEvent posts a system message about a member's mission to
// their group council. Best effort: a failed announcement only logs.
func (h *Handlers) announceCouncilEvent(ctx context.Context, groupID, subjectID uuid.UUID, c *content.Content) {
	stored, err := h.storeCouncilMessage(ctx, groupID, subjectID, store.MessageSistema, c)
	if err != nil {
		log.Printf("council announce: %v", err)
		return
	}

	subject, err := h.db.GetUserByID(ctx, subjectID)
	if err != nil || subject == nil {
		log.Printf("council announce: subject lookup failed: %v", err)
		return
	}

	h.hub.Broadcast(ctx, groupID, &ServerMessage{Msg: &MsgCouncil{
		ID:        stored.ID.String(),
		UserID:    subjectID.String(),
		UserName:  subject.Name,
		UserImg:   subject.Avatar,
		Kind:      store.MessageSistema,
		Content:   c,
		Timestamp: stored.CreatedAt,
	}}, "")
}
