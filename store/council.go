package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Council message kinds.
const (
	MessageUsuario = "usuario"
	MessageSistema = "sistema"
)

// CouncilMessage is one chat message in a group's council. Content arrives
// and leaves this layer as ciphertext; the caller owns encryption.
type CouncilMessage struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Content   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CouncilMessageWithUser joins a message with the sender's display name.
type CouncilMessageWithUser struct {
	CouncilMessage
	UserName string  `json:"user_name"`
	UserImg  *string `json:"user_img,omitempty"`
}

// SaveCouncilMessage persists a council message.
func (db *DB) SaveCouncilMessage(ctx context.Context, m *CouncilMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO council_messages (id, group_id, user_id, kind, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.GroupID, m.UserID, m.Kind, m.Content, m.CreatedAt)
	return err
}

// GetCouncilMessages returns the latest messages of a group in
// chronological order.
func (db *DB) GetCouncilMessages(ctx context.Context, groupID uuid.UUID, limit int) ([]CouncilMessageWithUser, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT cm.id, cm.group_id, cm.user_id, cm.kind, cm.content, cm.created_at, u.name, u.avatar
		FROM (
			SELECT * FROM council_messages
			WHERE group_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) cm
		JOIN users u ON u.id = cm.user_id
		ORDER BY cm.created_at
	`, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []CouncilMessageWithUser
	for rows.Next() {
		var m CouncilMessageWithUser
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Kind, &m.Content, &m.CreatedAt,
			&m.UserName, &m.UserImg); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
