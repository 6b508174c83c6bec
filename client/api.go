package client

import "context"

// API exposes the typed endpoint methods on top of the transport client.
type API struct {
	c *Client
}

// NewAPI wraps a transport client.
func NewAPI(c *Client) *API {
	return &API{c: c}
}

// Login authenticates and lets the server set the session cookie pair.
func (a *API) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := a.c.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account and signs it in.
func (a *API) Register(ctx context.Context, email, password, name, role string) (*User, error) {
	var user User
	err := a.c.Post(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"role":     role,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh silently rotates the cookie pair.
func (a *API) Refresh(ctx context.Context) (*User, error) {
	var user User
	if err := a.c.Post(ctx, refreshPath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the session server-side.
func (a *API) Logout(ctx context.Context) error {
	return a.c.Post(ctx, "/auth/logout", nil, nil)
}

// GetCurrentUser fetches the identity behind the session cookie.
func (a *API) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := a.c.Get(ctx, identityPath, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the caller's name and role.
func (a *API) UpdateUser(ctx context.Context, name, role string) (*User, error) {
	var user User
	err := a.c.Put(ctx, "/users", map[string]string{
		"name": name,
		"role": role,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetMyProfile fetches the caller's gym profile.
func (a *API) GetMyProfile(ctx context.Context) (*GymProfile, error) {
	var p GymProfile
	if err := a.c.Get(ctx, "/profiles", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InitProfile creates the gym profile and activates the account.
func (a *API) InitProfile(ctx context.Context, p *GymProfile) (*GymProfile, error) {
	var out GymProfile
	if err := a.c.Post(ctx, "/profiles", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates the caller's gym profile.
func (a *API) UpdateProfile(ctx context.Context, p *GymProfile) (*GymProfile, error) {
	var out GymProfile
	if err := a.c.Put(ctx, "/profiles", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGroupProfiles fetches a group's leaderboard.
func (a *API) GetGroupProfiles(ctx context.Context, groupID string) ([]GroupProfile, error) {
	var profiles []GroupProfile
	if err := a.c.Get(ctx, "/profiles/groups/"+groupID, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetAllGroups lists every group.
func (a *API) GetAllGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := a.c.Get(ctx, "/groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup fetches one group with its roster.
func (a *API) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var g Group
	if err := a.c.Get(ctx, "/groups/"+groupID, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup creates a group owned by the caller.
func (a *API) CreateGroup(ctx context.Context, name, description string) (*Group, error) {
	var g Group
	err := a.c.Post(ctx, "/groups", map[string]string{
		"name":        name,
		"description": description,
	}, &g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGroup dissolves a group the caller owns.
func (a *API) DeleteGroup(ctx context.Context, groupID string) error {
	return a.c.Delete(ctx, "/groups/"+groupID+"/cascade", nil)
}

// JoinGroup adds the caller to a group.
func (a *API) JoinGroup(ctx context.Context, groupID string) error {
	return a.c.Put(ctx, "/groups/members/"+groupID, nil, nil)
}

// LeaveGroup removes the caller from their group.
func (a *API) LeaveGroup(ctx context.Context) error {
	return a.c.Delete(ctx, "/groups/members", nil)
}

// GetAllMissions fetches the catalog.
func (a *API) GetAllMissions(ctx context.Context) ([]Mission, error) {
	var missions []Mission
	if err := a.c.Get(ctx, "/missions", &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// GetAllLogros fetches the achievement gallery.
func (a *API) GetAllLogros(ctx context.Context) ([]Logro, error) {
	var logros []Logro
	if err := a.c.Get(ctx, "/missions/logros", &logros); err != nil {
		return nil, err
	}
	return logros, nil
}

// GetMissionByID fetches one catalog entry.
func (a *API) GetMissionByID(ctx context.Context, id string) (*Mission, error) {
	var m Mission
	if err := a.c.Get(ctx, "/missions/"+id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMission edits a catalog entry's name, description and points.
func (a *API) UpdateMission(ctx context.Context, id, name, description string, points int) (*Mission, error) {
	var m Mission
	err := a.c.Put(ctx, "/missions/"+id, map[string]any{
		"name":        name,
		"description": description,
		"points":      points,
	}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// InitAssignment deals the caller their initial missions.
func (a *API) InitAssignment(ctx context.Context) (*Assignment, error) {
	var out Assignment
	if err := a.c.Post(ctx, "/assignments", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAssignment fetches a user's assignment with its embedded missions.
func (a *API) GetAssignment(ctx context.Context, userID string) (*Assignment, error) {
	var out Assignment
	if err := a.c.Get(ctx, "/assignments/"+userID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAssignmentMissions fetches a user's mission instances.
func (a *API) GetAssignmentMissions(ctx context.Context, userID string) ([]AssignmentMission, error) {
	var out []AssignmentMission
	if err := a.c.Get(ctx, "/assignments/"+userID+"/missions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RerollMission swaps a finished mission in a slot for a fresh one.
func (a *API) RerollMission(ctx context.Context, missionType string) (*AssignmentMission, error) {
	var out AssignmentMission
	if err := a.c.Put(ctx, "/assignments/missions/"+missionType, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMissionResult reports evidence for a mission, sending it to review.
func (a *API) SubmitMissionResult(ctx context.Context, missionType, result string) (*AssignmentMission, error) {
	var out AssignmentMission
	err := a.c.Put(ctx, "/assignments/missions/params", map[string]string{
		"mission_type": missionType,
		"result":       result,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Vote casts the caller's verdict on another member's pending mission.
func (a *API) Vote(ctx context.Context, userID, missionType string, like bool) (*VoteResult, error) {
	var out VoteResult
	err := a.c.Put(ctx, "/assignments/"+userID+"/missions/votes", map[string]any{
		"mission_type": missionType,
		"like":         like,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHistory fetches the caller's resolved-mission log.
func (a *API) GetHistory(ctx context.Context) ([]HistoryEvent, error) {
	var out []HistoryEvent
	if err := a.c.Get(ctx, "/history", &out); err != nil {
		return nil, err
	}
	return out, nil
}
