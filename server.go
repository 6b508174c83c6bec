package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/config"
)

// Server wires the REST routes and the council socket.
type Server struct {
	hub      *Hub
	config   *config.Config
	handlers *Handlers
}

// NewServer creates a new server.
func NewServer(hub *Hub, cfg *config.Config, handlers *Handlers) *Server {
	return &Server{
		hub:      hub,
		config:   cfg,
		handlers: handlers,
	}
}

// SetupRoutes configures the route table under the API prefix.
func (s *Server) SetupRoutes(router *mux.Router) {
	h := s.handlers
	api := router.PathPrefix(s.config.Server.APIPrefix).Subrouter()

	// Auth: the refresh and logout endpoints read the refresh cookie,
	// whose path is scoped to this subtree.
	api.HandleFunc("/auth/login", h.HandleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.HandleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.HandleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.HandleLogout).Methods(http.MethodPost)

	// Users
	api.HandleFunc("/users/me", h.requireSession(h.HandleMe)).Methods(http.MethodGet)
	api.HandleFunc("/users", h.requireSession(h.HandleUpdateUser)).Methods(http.MethodPut)
	api.HandleFunc("/users/avatar", h.requireSession(h.HandleUploadAvatar)).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/avatar", h.HandleGetAvatar).Methods(http.MethodGet)

	// Profiles
	api.HandleFunc("/profiles", h.requireSession(h.HandleGetMyProfile)).Methods(http.MethodGet)
	api.HandleFunc("/profiles", h.requireSession(h.HandleInitProfile)).Methods(http.MethodPost)
	api.HandleFunc("/profiles", h.requireSession(h.HandleUpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/profiles/groups/{groupId}", h.requireSession(h.HandleGroupProfiles)).Methods(http.MethodGet)

	// Groups and invites
	api.HandleFunc("/groups", h.requireSession(h.HandleGetGroups)).Methods(http.MethodGet)
	api.HandleFunc("/groups", h.requireSession(h.HandleCreateGroup)).Methods(http.MethodPost)
	api.HandleFunc("/groups/invites", h.requireSession(h.HandleSendInvite)).Methods(http.MethodPost)
	api.HandleFunc("/groups/invites/accept", h.requireSession(h.HandleAcceptInvite)).Methods(http.MethodPost)
	api.HandleFunc("/groups/invites/{id}", h.requireSession(h.HandleRevokeInvite)).Methods(http.MethodDelete)
	api.HandleFunc("/groups/members/{group_id}", h.requireSession(h.HandleJoinGroup)).Methods(http.MethodPut)
	api.HandleFunc("/groups/members", h.requireSession(h.HandleLeaveGroup)).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{id}", h.requireSession(h.HandleGetGroup)).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/cascade", h.requireSession(h.HandleDeleteGroup)).Methods(http.MethodDelete)

	// Mission catalog
	api.HandleFunc("/missions", h.requireSession(h.HandleGetMissions)).Methods(http.MethodGet)
	api.HandleFunc("/missions/logros", h.requireSession(h.HandleGetLogros)).Methods(http.MethodGet)
	api.HandleFunc("/missions/{id}", h.requireSession(h.HandleGetMission)).Methods(http.MethodGet)
	api.HandleFunc("/missions/{id}", h.requireSession(h.HandleUpdateMission)).Methods(http.MethodPut)

	// Assignments. The static segments register before {userId} so mux
	// never swallows them as a user ID.
	api.HandleFunc("/assignments", h.requireSession(h.HandleInitAssignment)).Methods(http.MethodPost)
	api.HandleFunc("/assignments/reviews", h.requireSession(h.HandleGetPendingReviews)).Methods(http.MethodGet)
	api.HandleFunc("/assignments/missions/params", h.requireSession(h.HandleSubmitResult)).Methods(http.MethodPut)
	api.HandleFunc("/assignments/missions/{type}", h.requireSession(h.HandleRerollMission)).Methods(http.MethodPut)
	api.HandleFunc("/assignments/{userId}", h.requireSession(h.HandleGetAssignment)).Methods(http.MethodGet)
	api.HandleFunc("/assignments/{userId}/missions", h.requireSession(h.HandleGetAssignmentMissions)).Methods(http.MethodGet)
	api.HandleFunc("/assignments/{userId}/missions/votes", h.requireSession(h.HandleVote)).Methods(http.MethodPut)

	// History
	api.HandleFunc("/history", h.requireSession(h.HandleGetHistory)).Methods(http.MethodGet)

	// Council chat
	api.HandleFunc("/council/messages", h.requireSession(h.HandleGetCouncilMessages)).Methods(http.MethodGet)
	api.HandleFunc("/council/ws", h.requireSession(h.HandleCouncilWS(h.NewUpgrader()))).Methods(http.MethodGet)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// handleHealth is a simple health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.hub.SessionCount())
}
