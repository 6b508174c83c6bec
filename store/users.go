package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User represents a user row. The JSON tags match the wire shape the web
// client consumes on /users/me and the auth endpoints.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Avatar    *string    `json:"avatar,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`
}

// CreateUser creates a user with its credential record in one transaction.
func (db *DB) CreateUser(ctx context.Context, email, name, role, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $5)
	`, user.ID, email, name, role, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO credentials (user_id, secret, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, user.ID, hashedPassword, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

const userColumns = `id, email, name, role, is_active, group_id, avatar, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.GroupID, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID. Returns nil, nil when absent.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// EmailExists checks whether an email is already registered.
func (db *DB) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// GetCredential returns the stored password hash for a user.
// Returns "" with no error when the user has no credential record.
func (db *DB) GetCredential(ctx context.Context, userID uuid.UUID) (string, error) {
	var secret string
	err := db.pool.QueryRow(ctx, `SELECT secret FROM credentials WHERE user_id = $1`, userID).Scan(&secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return secret, err
}

// UpdateUser updates the mutable user fields (name, role).
func (db *DB) UpdateUser(ctx context.Context, userID uuid.UUID, name, role string) (*User, error) {
	row := db.pool.QueryRow(ctx, `
		UPDATE users SET name = $1, role = $2, updated_at = $3
		WHERE id = $4
		RETURNING `+userColumns, name, role, time.Now().UTC(), userID)
	return scanUser(row)
}

// SetUserActive flips the is_active flag (set when the gym profile is initialized).
func (db *DB) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3
	`, active, time.Now().UTC(), userID)
	return err
}

// SetUserGroup sets or clears the user's group membership.
func (db *DB) SetUserGroup(ctx context.Context, userID uuid.UUID, groupID *uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE users SET group_id = $1, updated_at = $2 WHERE id = $3
	`, groupID, time.Now().UTC(), userID)
	return err
}

// SetUserAvatar records the avatar file location for a user.
func (db *DB) SetUserAvatar(ctx context.Context, userID uuid.UUID, location string) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3
	`, location, time.Now().UTC(), userID)
	return err
}
