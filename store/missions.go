package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Mission slots. Every user holds at most one mission instance per slot.
const (
	SlotPrincipal = "principal"
	SlotSecondary = "secondary"
	SlotGroup     = "group"
)

// ValidSlot reports whether s names a mission slot.
func ValidSlot(s string) bool {
	return s == SlotPrincipal || s == SlotSecondary || s == SlotGroup
}

// Mission is a catalog entry.
type Mission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slot        string    `json:"slot"`
	Points      int       `json:"points"`
	LogroName   *string   `json:"logro_name,omitempty"`
	LogroImg    *string   `json:"logro_img,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Logro is a gallery achievement derived from the mission catalog.
type Logro struct {
	MissionID uuid.UUID `json:"mission_id"`
	Name      string    `json:"name"`
	Img       *string   `json:"img,omitempty"`
	Points    int       `json:"points"`
}

const missionColumns = `id, name, description, slot, points, logro_name, logro_img, created_at`

func scanMission(row pgx.Row) (*Mission, error) {
	var m Mission
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Slot, &m.Points, &m.LogroName, &m.LogroImg, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMissions lists the mission catalog.
func (db *DB) GetAllMissions(ctx context.Context) ([]Mission, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+missionColumns+` FROM missions ORDER BY slot, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []Mission
	for rows.Next() {
		var m Mission
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Slot, &m.Points, &m.LogroName, &m.LogroImg, &m.CreatedAt); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// GetMissionByID retrieves a catalog entry. Returns nil, nil when absent.
func (db *DB) GetMissionByID(ctx context.Context, id uuid.UUID) (*Mission, error) {
	return scanMission(db.pool.QueryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = $1`, id))
}

// GetRandomMission picks a random catalog entry for a slot, excluding the
// given mission ID so a re-roll never repeats the current mission.
func (db *DB) GetRandomMission(ctx context.Context, slot string, exclude uuid.UUID) (*Mission, error) {
	return scanMission(db.pool.QueryRow(ctx, `
		SELECT `+missionColumns+` FROM missions
		WHERE slot = $1 AND id != $2
		ORDER BY random() LIMIT 1
	`, slot, exclude))
}

// GetLogros lists achievements: catalog entries that carry a logro.
func (db *DB) GetLogros(ctx context.Context) ([]Logro, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, logro_name, logro_img, points FROM missions
		WHERE logro_name IS NOT NULL
		ORDER BY points DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logros []Logro
	for rows.Next() {
		var l Logro
		if err := rows.Scan(&l.MissionID, &l.Name, &l.Img, &l.Points); err != nil {
			return nil, err
		}
		logros = append(logros, l)
	}
	return logros, rows.Err()
}

// UpdateMission updates a catalog entry's editable fields.
func (db *DB) UpdateMission(ctx context.Context, id uuid.UUID, name, description string, points int) (*Mission, error) {
	return scanMission(db.pool.QueryRow(ctx, `
		UPDATE missions SET name = $1, description = $2, points = $3
		WHERE id = $4
		RETURNING `+missionColumns, name, description, points, id))
}
