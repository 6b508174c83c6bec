package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Mission instance statuses.
const (
	StatusActive        = "active"
	StatusPendingReview = "pending_review"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
)

// Assignment groups a user's current mission instances.
type Assignment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// AssignmentMission is one mission instance in a slot, joined with its
// catalog entry for the dashboard view.
type AssignmentMission struct {
	ID           uuid.UUID  `json:"id"`
	AssignmentID uuid.UUID  `json:"assignment_id"`
	Slot         string     `json:"slot"`
	MissionID    uuid.UUID  `json:"mission_id"`
	Status       string     `json:"status"`
	Result       *string    `json:"result,omitempty"`
	Likes        int        `json:"likes"`
	Dislikes     int        `json:"dislikes"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`

	MissionName        string  `json:"mission_name"`
	MissionDescription string  `json:"mission_description"`
	Points             int     `json:"points"`
	LogroName          *string `json:"logro_name,omitempty"`
	LogroImg           *string `json:"logro_img,omitempty"`
}

// Vote is a council member's verdict on a pending mission.
type Vote struct {
	ID                  uuid.UUID `json:"id"`
	AssignmentMissionID uuid.UUID `json:"assignment_mission_id"`
	VoterID             uuid.UUID `json:"voter_id"`
	Approve             bool      `json:"approve"`
	CreatedAt           time.Time `json:"created_at"`
}

const assignmentColumns = `id, user_id, created_at, updated_at`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAssignment retrieves a user's assignment. Returns nil, nil when absent.
func (db *DB) GetAssignment(ctx context.Context, userID uuid.UUID) (*Assignment, error) {
	return scanAssignment(db.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE user_id = $1`, userID))
}

// CreateAssignment creates the user's assignment together with its initial
// mission instances in one transaction. missions maps slot to catalog ID.
func (db *DB) CreateAssignment(ctx context.Context, userID uuid.UUID, missions map[string]uuid.UUID) (*Assignment, error) {
	now := time.Now().UTC()
	a := &Assignment{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO assignments (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, a.ID, userID, now)
	if err != nil {
		return nil, err
	}

	for slot, missionID := range missions {
		_, err = tx.Exec(ctx, `
			INSERT INTO assignment_missions (id, assignment_id, slot, mission_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), a.ID, slot, missionID, StatusActive, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

const assignmentMissionColumns = `am.id, am.assignment_id, am.slot, am.mission_id, am.status,
	am.result, am.likes, am.dislikes, am.created_at, am.resolved_at,
	m.name, m.description, m.points, m.logro_name, m.logro_img`

func scanAssignmentMission(row pgx.Row) (*AssignmentMission, error) {
	var am AssignmentMission
	err := row.Scan(&am.ID, &am.AssignmentID, &am.Slot, &am.MissionID, &am.Status,
		&am.Result, &am.Likes, &am.Dislikes, &am.CreatedAt, &am.ResolvedAt,
		&am.MissionName, &am.MissionDescription, &am.Points, &am.LogroName, &am.LogroImg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &am, nil
}

// GetAssignmentMissions lists a user's mission instances with catalog data.
func (db *DB) GetAssignmentMissions(ctx context.Context, userID uuid.UUID) ([]AssignmentMission, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+assignmentMissionColumns+`
		FROM assignment_missions am
		JOIN assignments a ON a.id = am.assignment_id
		JOIN missions m ON m.id = am.mission_id
		WHERE a.user_id = $1
		ORDER BY am.slot
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []AssignmentMission
	for rows.Next() {
		var am AssignmentMission
		if err := rows.Scan(&am.ID, &am.AssignmentID, &am.Slot, &am.MissionID, &am.Status,
			&am.Result, &am.Likes, &am.Dislikes, &am.CreatedAt, &am.ResolvedAt,
			&am.MissionName, &am.MissionDescription, &am.Points, &am.LogroName, &am.LogroImg); err != nil {
			return nil, err
		}
		missions = append(missions, am)
	}
	return missions, rows.Err()
}

// GetAssignmentMission retrieves a user's mission instance in one slot.
// Returns nil, nil when absent.
func (db *DB) GetAssignmentMission(ctx context.Context, userID uuid.UUID, slot string) (*AssignmentMission, error) {
	return scanAssignmentMission(db.pool.QueryRow(ctx, `
		SELECT `+assignmentMissionColumns+`
		FROM assignment_missions am
		JOIN assignments a ON a.id = am.assignment_id
		JOIN missions m ON m.id = am.mission_id
		WHERE a.user_id = $1 AND am.slot = $2
	`, userID, slot))
}

// GetAssignmentMissionByID retrieves a mission instance together with the
// owning user, used by the vote flow. Returns nil, nil when absent.
func (db *DB) GetAssignmentMissionByID(ctx context.Context, id uuid.UUID) (*AssignmentMission, uuid.UUID, error) {
	var am AssignmentMission
	var ownerID uuid.UUID
	err := db.pool.QueryRow(ctx, `
		SELECT `+assignmentMissionColumns+`, a.user_id
		FROM assignment_missions am
		JOIN assignments a ON a.id = am.assignment_id
		JOIN missions m ON m.id = am.mission_id
		WHERE am.id = $1
	`, id).Scan(&am.ID, &am.AssignmentID, &am.Slot, &am.MissionID, &am.Status,
		&am.Result, &am.Likes, &am.Dislikes, &am.CreatedAt, &am.ResolvedAt,
		&am.MissionName, &am.MissionDescription, &am.Points, &am.LogroName, &am.LogroImg,
		&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, uuid.Nil, nil
	}
	if err != nil {
		return nil, uuid.Nil, err
	}
	return &am, ownerID, nil
}

// ReplaceAssignmentMission swaps in a new catalog mission for the slot,
// resetting the instance to a fresh active state.
func (db *DB) ReplaceAssignmentMission(ctx context.Context, instanceID, missionID uuid.UUID) (*AssignmentMission, error) {
	now := time.Now().UTC()
	_, err := db.pool.Exec(ctx, `
		UPDATE assignment_missions
		SET mission_id = $1, status = $2, result = NULL, likes = 0, dislikes = 0,
			created_at = $3, resolved_at = NULL
		WHERE id = $4
	`, missionID, StatusActive, now, instanceID)
	if err != nil {
		return nil, err
	}
	return scanAssignmentMission(db.pool.QueryRow(ctx, `
		SELECT `+assignmentMissionColumns+`
		FROM assignment_missions am
		JOIN missions m ON m.id = am.mission_id
		WHERE am.id = $1
	`, instanceID))
}

// SubmitMissionResult records evidence and moves the instance to review.
func (db *DB) SubmitMissionResult(ctx context.Context, instanceID uuid.UUID, result string) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE assignment_missions SET status = $1, result = $2
		WHERE id = $3 AND status = $4
	`, StatusPendingReview, result, instanceID, StatusActive)
	return err
}

// HasVoted reports whether the voter already cast a verdict on the instance.
func (db *DB) HasVoted(ctx context.Context, instanceID, voterID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM assignment_votes WHERE assignment_mission_id = $1 AND voter_id = $2)
	`, instanceID, voterID).Scan(&exists)
	return exists, err
}

// CastVote records a verdict and bumps the matching counter. Returns the
// updated like/dislike tallies.
func (db *DB) CastVote(ctx context.Context, instanceID, voterID uuid.UUID, approve bool) (likes, dislikes int, err error) {
	now := time.Now().UTC()

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO assignment_votes (id, assignment_mission_id, voter_id, approve, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), instanceID, voterID, approve, now)
	if err != nil {
		return 0, 0, err
	}

	column := "dislikes"
	if approve {
		column = "likes"
	}
	err = tx.QueryRow(ctx, `
		UPDATE assignment_missions SET `+column+` = `+column+` + 1
		WHERE id = $1
		RETURNING likes, dislikes
	`, instanceID).Scan(&likes, &dislikes)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}

// ResolveMission moves a reviewed instance to its terminal status.
func (db *DB) ResolveMission(ctx context.Context, instanceID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE assignment_missions SET status = $1, resolved_at = $2
		WHERE id = $3 AND status = $4
	`, status, time.Now().UTC(), instanceID, StatusPendingReview)
	return err
}

// GetPendingReviews lists a group's mission instances awaiting council
// verdicts, joined with the owning user.
func (db *DB) GetPendingReviews(ctx context.Context, groupID uuid.UUID) ([]PendingReview, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+assignmentMissionColumns+`, a.user_id, u.name
		FROM assignment_missions am
		JOIN assignments a ON a.id = am.assignment_id
		JOIN users u ON u.id = a.user_id
		JOIN missions m ON m.id = am.mission_id
		WHERE u.group_id = $1 AND am.status = $2
		ORDER BY am.created_at
	`, groupID, StatusPendingReview)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []PendingReview
	for rows.Next() {
		var r PendingReview
		if err := rows.Scan(&r.ID, &r.AssignmentID, &r.Slot, &r.MissionID, &r.Status,
			&r.Result, &r.Likes, &r.Dislikes, &r.CreatedAt, &r.ResolvedAt,
			&r.MissionName, &r.MissionDescription, &r.Points, &r.LogroName, &r.LogroImg,
			&r.UserID, &r.UserName); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// PendingReview is a mission instance under review plus the owner's identity.
type PendingReview struct {
	AssignmentMission
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
}
