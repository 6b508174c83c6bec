package client

import "time"

// Roles a user can hold.
const (
	RoleJugador    = "jugador"
	RoleEspectador = "espectador"
)

// Mission slots.
const (
	SlotPrincipal = "principal"
	SlotSecondary = "secondary"
	SlotGroup     = "group"
)

// Mission instance statuses.
const (
	StatusActive        = "active"
	StatusPendingReview = "pending_review"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
)

// User is the authenticated account returned by the auth endpoints and the
// identity check.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	GroupID   *string   `json:"group_id,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GymProfile is the fitness profile with its Spanish wire names.
type GymProfile struct {
	UserID       string  `json:"user_id"`
	Apodo        string  `json:"apodo"`
	Frase        string  `json:"frase"`
	Objetivo     string  `json:"objetivo"`
	Descripcion  string  `json:"descripcion"`
	Edad         int     `json:"edad"`
	PesoCorporal float64 `json:"peso_corporal"`
	Estatura     float64 `json:"estatura"`
	PressBanca   float64 `json:"press_banca"`
	Sentadilla   float64 `json:"sentadilla"`
	PesoMuerto   float64 `json:"peso_muerto"`
	Prensa       float64 `json:"prensa"`
	Biceps       float64 `json:"biceps"`
	Aura         int     `json:"aura"`
}

// GroupProfile is a leaderboard entry: a profile with its owner's identity.
type GroupProfile struct {
	GymProfile
	UserName string  `json:"user_name"`
	UserImg  *string `json:"user_img,omitempty"`
}

// Group is a brotherhood group.
type Group struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	OwnerID     string        `json:"owner_id"`
	MemberCount int           `json:"member_count"`
	Members     []GroupMember `json:"members,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// GroupMember is one roster entry.
type GroupMember struct {
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name"`
	Role     string  `json:"role"`
	IsActive bool    `json:"is_active"`
	Img      *string `json:"img,omitempty"`
}

// Mission is a catalog entry.
type Mission struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Slot        string  `json:"slot"`
	Points      int     `json:"points"`
	LogroName   *string `json:"logro_name,omitempty"`
	LogroImg    *string `json:"logro_img,omitempty"`
}

// Logro is one achievement gallery entry.
type Logro struct {
	MissionID string  `json:"mission_id"`
	Name      string  `json:"name"`
	Img       *string `json:"img,omitempty"`
	Points    int     `json:"points"`
}

// AssignmentMission is one mission instance joined with its catalog entry.
type AssignmentMission struct {
	ID                 string     `json:"id"`
	Slot               string     `json:"slot"`
	MissionID          string     `json:"mission_id"`
	Status             string     `json:"status"`
	Result             *string    `json:"result,omitempty"`
	Likes              int        `json:"likes"`
	Dislikes           int        `json:"dislikes"`
	MissionName        string     `json:"mission_name"`
	MissionDescription string     `json:"mission_description"`
	Points             int        `json:"points"`
	LogroName          *string    `json:"logro_name,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// Assignment is the dashboard shape: the user's instances embedded by slot.
type Assignment struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	Mission          *AssignmentMission `json:"mission"`
	SecondaryMission *AssignmentMission `json:"secondary_mission"`
	GroupMission     *AssignmentMission `json:"group_mission"`
	CreatedAt        time.Time          `json:"created_at"`
}

// VoteResult reports the tallies after a vote, plus the terminal status once
// the group majority is reached.
type VoteResult struct {
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
	Status   string `json:"status"`
}

// HistoryEvent is one resolved mission in the history log.
type HistoryEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MissionName string    `json:"mission_name"`
	Slot        string    `json:"slot"`
	Status      string    `json:"status"`
	Points      int       `json:"points"`
	LogroName   *string   `json:"logro_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
