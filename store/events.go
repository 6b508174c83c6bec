package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a resolved mission in the history log.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	MissionName string     `json:"mission_name"`
	Slot        string     `json:"slot"`
	Status      string     `json:"status"`
	Points      int        `json:"points"`
	LogroName   *string    `json:"logro_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RecordEvent appends a resolved mission to the history log.
func (db *DB) RecordEvent(ctx context.Context, e *Event) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	_, err := db.pool.Exec(ctx, `
		INSERT INTO events (id, user_id, group_id, mission_name, slot, status, points, logro_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.UserID, e.GroupID, e.MissionName, e.Slot, e.Status, e.Points, e.LogroName, e.CreatedAt)
	return err
}

// GetUserEvents lists a user's history, newest first.
func (db *DB) GetUserEvents(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, user_id, group_id, mission_name, slot, status, points, logro_name, created_at
		FROM events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.GroupID, &e.MissionName, &e.Slot,
			&e.Status, &e.Points, &e.LogroName, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
