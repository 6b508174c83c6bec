package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Invite statuses.
const (
	InvitePending = "pending"
	InviteUsed    = "used"
	InviteRevoked = "revoked"
	InviteExpired = "expired"
)

// GroupInvite is an emailed invitation to join a group.
type GroupInvite struct {
	ID        uuid.UUID  `json:"id"`
	GroupID   uuid.UUID  `json:"group_id"`
	InviterID uuid.UUID  `json:"inviter_id"`
	Email     string     `json:"email"`
	Token     []byte     `json:"-"`
	Status    string     `json:"status"`
	UsedBy    *uuid.UUID `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateInvite persists a pending invite with its token digest.
func (db *DB) CreateInvite(ctx context.Context, groupID, inviterID uuid.UUID, email string, token []byte) (*GroupInvite, error) {
	inv := &GroupInvite{
		ID:        uuid.New(),
		GroupID:   groupID,
		InviterID: inviterID,
		Email:     email,
		Token:     token,
		Status:    InvitePending,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO group_invites (id, group_id, inviter_id, email, token, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, inv.ID, inv.GroupID, inv.InviterID, inv.Email, inv.Token, inv.Status, inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

const inviteColumns = `id, group_id, inviter_id, email, token, status, used_by, used_at, created_at`

func scanInvite(row pgx.Row) (*GroupInvite, error) {
	var inv GroupInvite
	err := row.Scan(&inv.ID, &inv.GroupID, &inv.InviterID, &inv.Email, &inv.Token,
		&inv.Status, &inv.UsedBy, &inv.UsedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetPendingInvite finds a pending invite for an email address.
// Returns nil, nil when absent.
func (db *DB) GetPendingInvite(ctx context.Context, email string) (*GroupInvite, error) {
	return scanInvite(db.pool.QueryRow(ctx, `
		SELECT `+inviteColumns+` FROM group_invites
		WHERE email = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, email, InvitePending))
}

// GetInviteByID retrieves an invite. Returns nil, nil when absent.
func (db *DB) GetInviteByID(ctx context.Context, id uuid.UUID) (*GroupInvite, error) {
	return scanInvite(db.pool.QueryRow(ctx,
		`SELECT `+inviteColumns+` FROM group_invites WHERE id = $1`, id))
}

// MarkInviteUsed closes an invite after the invitee joins the group.
func (db *DB) MarkInviteUsed(ctx context.Context, id, usedBy uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE group_invites SET status = $1, used_by = $2, used_at = $3
		WHERE id = $4 AND status = $5
	`, InviteUsed, usedBy, time.Now().UTC(), id, InvitePending)
	return err
}

// RevokeInvite marks a pending invite as revoked.
func (db *DB) RevokeInvite(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE group_invites SET status = $1 WHERE id = $2 AND status = $3
	`, InviteRevoked, id, InvitePending)
	return err
}
