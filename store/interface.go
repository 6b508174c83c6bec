package store

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence interface consumed by the handlers.
type Store interface {
	Close()

	// Users
	CreateUser(ctx context.Context, email, name, role, hashedPassword string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetCredential(ctx context.Context, userID uuid.UUID) (string, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, name, role string) (*User, error)
	SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error
	SetUserGroup(ctx context.Context, userID uuid.UUID, groupID *uuid.UUID) error
	SetUserAvatar(ctx context.Context, userID uuid.UUID, location string) error

	// Profiles
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) (*Profile, error)
	AddAura(ctx context.Context, userID uuid.UUID, points int) error
	GetGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]ProfileWithUser, error)

	// Groups
	CreateGroup(ctx context.Context, ownerID uuid.UUID, name, description string) (*Group, error)
	GetGroupByID(ctx context.Context, id uuid.UUID) (*Group, error)
	GetAllGroups(ctx context.Context) ([]Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMember, error)
	CountGroupMembers(ctx context.Context, groupID uuid.UUID) (int, error)

	// Mission catalog
	GetAllMissions(ctx context.Context) ([]Mission, error)
	GetMissionByID(ctx context.Context, id uuid.UUID) (*Mission, error)
	GetRandomMission(ctx context.Context, slot string, exclude uuid.UUID) (*Mission, error)
	GetLogros(ctx context.Context) ([]Logro, error)
	UpdateMission(ctx context.Context, id uuid.UUID, name, description string, points int) (*Mission, error)

	// Assignments
	GetAssignment(ctx context.Context, userID uuid.UUID) (*Assignment, error)
	CreateAssignment(ctx context.Context, userID uuid.UUID, missions map[string]uuid.UUID) (*Assignment, error)
	GetAssignmentMissions(ctx context.Context, userID uuid.UUID) ([]AssignmentMission, error)
	GetAssignmentMission(ctx context.Context, userID uuid.UUID, slot string) (*AssignmentMission, error)
	GetAssignmentMissionByID(ctx context.Context, id uuid.UUID) (*AssignmentMission, uuid.UUID, error)
	ReplaceAssignmentMission(ctx context.Context, instanceID, missionID uuid.UUID) (*AssignmentMission, error)
	SubmitMissionResult(ctx context.Context, instanceID uuid.UUID, result string) error
	HasVoted(ctx context.Context, instanceID, voterID uuid.UUID) (bool, error)
	CastVote(ctx context.Context, instanceID, voterID uuid.UUID, approve bool) (likes, dislikes int, err error)
	ResolveMission(ctx context.Context, instanceID uuid.UUID, status string) error
	GetPendingReviews(ctx context.Context, groupID uuid.UUID) ([]PendingReview, error)

	// History
	RecordEvent(ctx context.Context, e *Event) error
	GetUserEvents(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error)

	// Council chat
	SaveCouncilMessage(ctx context.Context, m *CouncilMessage) error
	GetCouncilMessages(ctx context.Context, groupID uuid.UUID, limit int) ([]CouncilMessageWithUser, error)

	// Invites
	CreateInvite(ctx context.Context, groupID, inviterID uuid.UUID, email string, token []byte) (*GroupInvite, error)
	GetPendingInvite(ctx context.Context, email string) (*GroupInvite, error)
	GetInviteByID(ctx context.Context, id uuid.UUID) (*GroupInvite, error)
	MarkInviteUsed(ctx context.Context, id, usedBy uuid.UUID) error
	RevokeInvite(ctx context.Context, id uuid.UUID) error
}

// Compile-time check that DB implements Store.
var _ Store = (*DB)(nil)
