package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockStore is a mock implementation of Store for testing.
// Each method field can be set to a custom function to control behavior.
type MockStore struct {
	// Users
	CreateUserFn     func(ctx context.Context, email, name, role, hashedPassword string) (*User, error)
	GetUserByIDFn    func(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmailFn func(ctx context.Context, email string) (*User, error)
	EmailExistsFn    func(ctx context.Context, email string) (bool, error)
	GetCredentialFn  func(ctx context.Context, userID uuid.UUID) (string, error)
	UpdateUserFn     func(ctx context.Context, userID uuid.UUID, name, role string) (*User, error)
	SetUserActiveFn  func(ctx context.Context, userID uuid.UUID, active bool) error
	SetUserGroupFn   func(ctx context.Context, userID uuid.UUID, groupID *uuid.UUID) error
	SetUserAvatarFn  func(ctx context.Context, userID uuid.UUID, location string) error

	// Profiles
	CreateProfileFn    func(ctx context.Context, p *Profile) error
	GetProfileFn       func(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfileFn    func(ctx context.Context, p *Profile) (*Profile, error)
	AddAuraFn          func(ctx context.Context, userID uuid.UUID, points int) error
	GetGroupProfilesFn func(ctx context.Context, groupID uuid.UUID) ([]ProfileWithUser, error)

	// Groups
	CreateGroupFn       func(ctx context.Context, ownerID uuid.UUID, name, description string) (*Group, error)
	GetGroupByIDFn      func(ctx context.Context, id uuid.UUID) (*Group, error)
	GetAllGroupsFn      func(ctx context.Context) ([]Group, error)
	DeleteGroupFn       func(ctx context.Context, id uuid.UUID) error
	GetGroupMembersFn   func(ctx context.Context, groupID uuid.UUID) ([]GroupMember, error)
	CountGroupMembersFn func(ctx context.Context, groupID uuid.UUID) (int, error)

	// Mission catalog
	GetAllMissionsFn   func(ctx context.Context) ([]Mission, error)
	GetMissionByIDFn   func(ctx context.Context, id uuid.UUID) (*Mission, error)
	GetRandomMissionFn func(ctx context.Context, slot string, exclude uuid.UUID) (*Mission, error)
	GetLogrosFn        func(ctx context.Context) ([]Logro, error)
	UpdateMissionFn    func(ctx context.Context, id uuid.UUID, name, description string, points int) (*Mission, error)

	// Assignments
	GetAssignmentFn            func(ctx context.Context, userID uuid.UUID) (*Assignment, error)
	CreateAssignmentFn         func(ctx context.Context, userID uuid.UUID, missions map[string]uuid.UUID) (*Assignment, error)
	GetAssignmentMissionsFn    func(ctx context.Context, userID uuid.UUID) ([]AssignmentMission, error)
	GetAssignmentMissionFn     func(ctx context.Context, userID uuid.UUID, slot string) (*AssignmentMission, error)
	GetAssignmentMissionByIDFn func(ctx context.Context, id uuid.UUID) (*AssignmentMission, uuid.UUID, error)
	ReplaceAssignmentMissionFn func(ctx context.Context, instanceID, missionID uuid.UUID) (*AssignmentMission, error)
	SubmitMissionResultFn      func(ctx context.Context, instanceID uuid.UUID, result string) error
	HasVotedFn                 func(ctx context.Context, instanceID, voterID uuid.UUID) (bool, error)
	CastVoteFn                 func(ctx context.Context, instanceID, voterID uuid.UUID, approve bool) (int, int, error)
	ResolveMissionFn           func(ctx context.Context, instanceID uuid.UUID, status string) error
	GetPendingReviewsFn        func(ctx context.Context, groupID uuid.UUID) ([]PendingReview, error)

	// History
	RecordEventFn   func(ctx context.Context, e *Event) error
	GetUserEventsFn func(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error)

	// Council chat
	SaveCouncilMessageFn func(ctx context.Context, m *CouncilMessage) error
	GetCouncilMessagesFn func(ctx context.Context, groupID uuid.UUID, limit int) ([]CouncilMessageWithUser, error)

	// Invites
	CreateInviteFn     func(ctx context.Context, groupID, inviterID uuid.UUID, email string, token []byte) (*GroupInvite, error)
	GetPendingInviteFn func(ctx context.Context, email string) (*GroupInvite, error)
	GetInviteByIDFn    func(ctx context.Context, id uuid.UUID) (*GroupInvite, error)
	MarkInviteUsedFn   func(ctx context.Context, id, usedBy uuid.UUID) error
	RevokeInviteFn     func(ctx context.Context, id uuid.UUID) error
}

// Compile-time check that MockStore implements Store.
var _ Store = (*MockStore)(nil)

func (m *MockStore) Close() {}

func (m *MockStore) CreateUser(ctx context.Context, email, name, role, hashedPassword string) (*User, error) {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, email, name, role, hashedPassword)
	}
	now := time.Now().UTC()
	return &User{ID: uuid.New(), Email: email, Name: name, Role: role, CreatedAt: now, UpdatedAt: now}, nil
}

func (m *MockStore) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if m.GetUserByIDFn != nil {
		return m.GetUserByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if m.GetUserByEmailFn != nil {
		return m.GetUserByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *MockStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFn != nil {
		return m.EmailExistsFn(ctx, email)
	}
	return false, nil
}

func (m *MockStore) GetCredential(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GetCredentialFn != nil {
		return m.GetCredentialFn(ctx, userID)
	}
	return "", nil
}

func (m *MockStore) UpdateUser(ctx context.Context, userID uuid.UUID, name, role string) (*User, error) {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, userID, name, role)
	}
	return &User{ID: userID, Name: name, Role: role}, nil
}

func (m *MockStore) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	if m.SetUserActiveFn != nil {
		return m.SetUserActiveFn(ctx, userID, active)
	}
	return nil
}

func (m *MockStore) SetUserGroup(ctx context.Context, userID uuid.UUID, groupID *uuid.UUID) error {
	if m.SetUserGroupFn != nil {
		return m.SetUserGroupFn(ctx, userID, groupID)
	}
	return nil
}

func (m *MockStore) SetUserAvatar(ctx context.Context, userID uuid.UUID, location string) error {
	if m.SetUserAvatarFn != nil {
		return m.SetUserAvatarFn(ctx, userID, location)
	}
	return nil
}

func (m *MockStore) CreateProfile(ctx context.Context, p *Profile) error {
	if m.CreateProfileFn != nil {
		return m.CreateProfileFn(ctx, p)
	}
	return nil
}

func (m *MockStore) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) UpdateProfile(ctx context.Context, p *Profile) (*Profile, error) {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, p)
	}
	return p, nil
}

func (m *MockStore) AddAura(ctx context.Context, userID uuid.UUID, points int) error {
	if m.AddAuraFn != nil {
		return m.AddAuraFn(ctx, userID, points)
	}
	return nil
}

func (m *MockStore) GetGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]ProfileWithUser, error) {
	if m.GetGroupProfilesFn != nil {
		return m.GetGroupProfilesFn(ctx, groupID)
	}
	return nil, nil
}

func (m *MockStore) CreateGroup(ctx context.Context, ownerID uuid.UUID, name, description string) (*Group, error) {
	if m.CreateGroupFn != nil {
		return m.CreateGroupFn(ctx, ownerID, name, description)
	}
	return &Group{ID: uuid.New(), Name: name, Description: description, OwnerID: ownerID, MemberCount: 1}, nil
}

func (m *MockStore) GetGroupByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	if m.GetGroupByIDFn != nil {
		return m.GetGroupByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *MockStore) GetAllGroups(ctx context.Context) ([]Group, error) {
	if m.GetAllGroupsFn != nil {
		return m.GetAllGroupsFn(ctx)
	}
	return nil, nil
}

func (m *MockStore) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if m.DeleteGroupFn != nil {
		return m.DeleteGroupFn(ctx, id)
	}
	return nil
}

func (m *MockStore) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMember, error) {
	if m.GetGroupMembersFn != nil {
		return m.GetGroupMembersFn(ctx, groupID)
	}
	return nil, nil
}

func (m *MockStore) CountGroupMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	if m.CountGroupMembersFn != nil {
		return m.CountGroupMembersFn(ctx, groupID)
	}
	return 0, nil
}

func (m *MockStore) GetAllMissions(ctx context.Context) ([]Mission, error) {
	if m.GetAllMissionsFn != nil {
		return m.GetAllMissionsFn(ctx)
	}
	return nil, nil
}

func (m *MockStore) GetMissionByID(ctx context.Context, id uuid.UUID) (*Mission, error) {
	if m.GetMissionByIDFn != nil {
		return m.GetMissionByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *MockStore) GetRandomMission(ctx context.Context, slot string, exclude uuid.UUID) (*Mission, error) {
	if m.GetRandomMissionFn != nil {
		return m.GetRandomMissionFn(ctx, slot, exclude)
	}
	return &Mission{ID: uuid.New(), Name: "mock mission", Slot: slot, Points: 10}, nil
}

func (m *MockStore) GetLogros(ctx context.Context) ([]Logro, error) {
	if m.GetLogrosFn != nil {
		return m.GetLogrosFn(ctx)
	}
	return nil, nil
}

func (m *MockStore) UpdateMission(ctx context.Context, id uuid.UUID, name, description string, points int) (*Mission, error) {
	if m.UpdateMissionFn != nil {
		return m.UpdateMissionFn(ctx, id, name, description, points)
	}
	return &Mission{ID: id, Name: name, Description: description, Points: points}, nil
}

func (m *MockStore) GetAssignment(ctx context.Context, userID uuid.UUID) (*Assignment, error) {
	if m.GetAssignmentFn != nil {
		return m.GetAssignmentFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) CreateAssignment(ctx context.Context, userID uuid.UUID, missions map[string]uuid.UUID) (*Assignment, error) {
	if m.CreateAssignmentFn != nil {
		return m.CreateAssignmentFn(ctx, userID, missions)
	}
	return &Assignment{ID: uuid.New(), UserID: userID}, nil
}

func (m *MockStore) GetAssignmentMissions(ctx context.Context, userID uuid.UUID) ([]AssignmentMission, error) {
	if m.GetAssignmentMissionsFn != nil {
		return m.GetAssignmentMissionsFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) GetAssignmentMission(ctx context.Context, userID uuid.UUID, slot string) (*AssignmentMission, error) {
	if m.GetAssignmentMissionFn != nil {
		return m.GetAssignmentMissionFn(ctx, userID, slot)
	}
	return nil, nil
}

func (m *MockStore) GetAssignmentMissionByID(ctx context.Context, id uuid.UUID) (*AssignmentMission, uuid.UUID, error) {
	if m.GetAssignmentMissionByIDFn != nil {
		return m.GetAssignmentMissionByIDFn(ctx, id)
	}
	return nil, uuid.Nil, nil
}

func (m *MockStore) ReplaceAssignmentMission(ctx context.Context, instanceID, missionID uuid.UUID) (*AssignmentMission, error) {
	if m.ReplaceAssignmentMissionFn != nil {
		return m.ReplaceAssignmentMissionFn(ctx, instanceID, missionID)
	}
	return &AssignmentMission{ID: instanceID, MissionID: missionID, Status: StatusActive}, nil
}

func (m *MockStore) SubmitMissionResult(ctx context.Context, instanceID uuid.UUID, result string) error {
	if m.SubmitMissionResultFn != nil {
		return m.SubmitMissionResultFn(ctx, instanceID, result)
	}
	return nil
}

func (m *MockStore) HasVoted(ctx context.Context, instanceID, voterID uuid.UUID) (bool, error) {
	if m.HasVotedFn != nil {
		return m.HasVotedFn(ctx, instanceID, voterID)
	}
	return false, nil
}

func (m *MockStore) CastVote(ctx context.Context, instanceID, voterID uuid.UUID, approve bool) (int, int, error) {
	if m.CastVoteFn != nil {
		return m.CastVoteFn(ctx, instanceID, voterID, approve)
	}
	if approve {
		return 1, 0, nil
	}
	return 0, 1, nil
}

func (m *MockStore) ResolveMission(ctx context.Context, instanceID uuid.UUID, status string) error {
	if m.ResolveMissionFn != nil {
		return m.ResolveMissionFn(ctx, instanceID, status)
	}
	return nil
}

func (m *MockStore) GetPendingReviews(ctx context.Context, groupID uuid.UUID) ([]PendingReview, error) {
	if m.GetPendingReviewsFn != nil {
		return m.GetPendingReviewsFn(ctx, groupID)
	}
	return nil, nil
}

func (m *MockStore) RecordEvent(ctx context.Context, e *Event) error {
	if m.RecordEventFn != nil {
		return m.RecordEventFn(ctx, e)
	}
	return nil
}

func (m *MockStore) GetUserEvents(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error) {
	if m.GetUserEventsFn != nil {
		return m.GetUserEventsFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockStore) SaveCouncilMessage(ctx context.Context, msg *CouncilMessage) error {
	if m.SaveCouncilMessageFn != nil {
		return m.SaveCouncilMessageFn(ctx, msg)
	}
	return nil
}

func (m *MockStore) GetCouncilMessages(ctx context.Context, groupID uuid.UUID, limit int) ([]CouncilMessageWithUser, error) {
	if m.GetCouncilMessagesFn != nil {
		return m.GetCouncilMessagesFn(ctx, groupID, limit)
	}
	return nil, nil
}

func (m *MockStore) CreateInvite(ctx context.Context, groupID, inviterID uuid.UUID, email string, token []byte) (*GroupInvite, error) {
	if m.CreateInviteFn != nil {
		return m.CreateInviteFn(ctx, groupID, inviterID, email, token)
	}
	return &GroupInvite{ID: uuid.New(), GroupID: groupID, InviterID: inviterID, Email: email, Status: InvitePending}, nil
}

func (m *MockStore) GetPendingInvite(ctx context.Context, email string) (*GroupInvite, error) {
	if m.GetPendingInviteFn != nil {
		return m.GetPendingInviteFn(ctx, email)
	}
	return nil, nil
}

func (m *MockStore) GetInviteByID(ctx context.Context, id uuid.UUID) (*GroupInvite, error) {
	if m.GetInviteByIDFn != nil {
		return m.GetInviteByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *MockStore) MarkInviteUsed(ctx context.Context, id, usedBy uuid.UUID) error {
	if m.MarkInviteUsedFn != nil {
		return m.MarkInviteUsedFn(ctx, id, usedBy)
	}
	return nil
}

func (m *MockStore) RevokeInvite(ctx context.Context, id uuid.UUID) error {
	if m.RevokeInviteFn != nil {
		return m.RevokeInviteFn(ctx, id)
	}
	return nil
}
