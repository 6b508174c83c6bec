package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Group represents a brotherhood group.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// GroupMember is the roster entry for a group's member list.
type GroupMember struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
	Img      *string   `json:"img,omitempty"`
}

// CreateGroup creates a group and joins the owner to it.
func (db *DB) CreateGroup(ctx context.Context, ownerID uuid.UUID, name, description string) (*Group, error) {
	now := time.Now().UTC()
	g := &Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		MemberCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO groups (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, g.ID, name, description, ownerID, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET group_id = $1, updated_at = $2 WHERE id = $3
	`, g.ID, now, ownerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

const groupColumns = `g.id, g.name, g.description, g.owner_id,
	(SELECT COUNT(*) FROM users u WHERE u.group_id = g.id), g.created_at, g.updated_at`

func scanGroup(row pgx.Row) (*Group, error) {
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.MemberCount, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroupByID retrieves a group. Returns nil, nil when absent.
func (db *DB) GetGroupByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	return scanGroup(db.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups g WHERE g.id = $1`, id))
}

// GetAllGroups lists all groups, newest first.
func (db *DB) GetAllGroups(ctx context.Context) ([]Group, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+groupColumns+` FROM groups g ORDER BY g.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.MemberCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// DeleteGroup removes a group; member rows lose their group_id via FK.
func (db *DB) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	return err
}

// GetGroupMembers lists the group roster with avatar locations.
func (db *DB) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMember, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT u.id, u.name, u.role, u.is_active, u.avatar
		FROM users u
		WHERE u.group_id = $1
		ORDER BY u.name
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []GroupMember
	for rows.Next() {
		var m GroupMember
		if err := rows.Scan(&m.UserID, &m.UserName, &m.Role, &m.IsActive, &m.Img); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountGroupMembers returns the number of members in a group.
func (db *DB) CountGroupMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE group_id = $1`, groupID).Scan(&n)
	return n, err
}
