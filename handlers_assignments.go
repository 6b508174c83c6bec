package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/content"
	"github.com/ironbrothers/ironbrothers/store"
)

// assignmentView is the dashboard shape: the assignment with its three
// mission instances embedded by slot.
type assignmentView struct {
	*store.Assignment
	Mission          *store.AssignmentMission `json:"mission"`
	SecondaryMission *store.AssignmentMission `json:"secondary_mission"`
	GroupMission     *store.AssignmentMission `json:"group_mission"`
}

func buildAssignmentView(a *store.Assignment, missions []store.AssignmentMission) *assignmentView {
	view := &assignmentView{Assignment: a}
	for i := range missions {
		m := &missions[i]
		switch m.Slot {
		case store.SlotPrincipal:
			view.Mission = m
		case store.SlotSecondary:
			view.SecondaryMission = m
		case store.SlotGroup:
			view.GroupMission = m
		}
	}
	return view
}

// HandleInitAssignment processes POST /assignments: deals the caller a
// random mission per slot.
func (h *Handlers) HandleInitAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)

	existing, err := h.db.GetAssignment(ctx, userID)
	if err != nil {
		h.dbError(w, "init assignment", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Ya tienes misiones asignadas.")
		return
	}

	missions := make(map[string]uuid.UUID, 3)
	for _, slot := range []string{store.SlotPrincipal, store.SlotSecondary, store.SlotGroup} {
		m, err := h.db.GetRandomMission(ctx, slot, uuid.Nil)
		if err != nil {
			h.dbError(w, "init assignment", err)
			return
		}
		if m == nil {
			writeError(w, http.StatusConflict, "No hay misiones disponibles en el catálogo.")
			return
		}
		missions[slot] = m.ID
	}

	assignment, err := h.db.CreateAssignment(ctx, userID, missions)
	if err != nil {
		h.dbError(w, "init assignment", err)
		return
	}

	instances, err := h.db.GetAssignmentMissions(ctx, userID)
	if err != nil {
		h.dbError(w, "init assignment", err)
		return
	}

	log.Printf("assignment created: %s for %s", shortID(assignment.ID), shortID(userID))
	writeJSON(w, http.StatusCreated, buildAssignmentView(assignment, instances))
}

// HandleGetAssignment processes GET /assignments/{userId}.
func (h *Handlers) HandleGetAssignment(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de usuario inválido")
		return
	}

	ctx := r.Context()
	assignment, err := h.db.GetAssignment(ctx, targetID)
	if err != nil {
		h.dbError(w, "get assignment", err)
		return
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "No se encontraron misiones asignadas.")
		return
	}

	instances, err := h.db.GetAssignmentMissions(ctx, targetID)
	if err != nil {
		h.dbError(w, "get assignment", err)
		return
	}
	writeJSON(w, http.StatusOK, buildAssignmentView(assignment, instances))
}

// HandleGetAssignmentMissions processes GET /assignments/{userId}/missions.
func (h *Handlers) HandleGetAssignmentMissions(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de usuario inválido")
		return
	}

	instances, err := h.db.GetAssignmentMissions(r.Context(), targetID)
	if err != nil {
		h.dbError(w, "get assignment missions", err)
		return
	}
	if instances == nil {
		instances = []store.AssignmentMission{}
	}
	writeJSON(w, http.StatusOK, instances)
}

// HandleRerollMission processes PUT /assignments/missions/{type}: swaps a
// finished mission for a fresh random one. The secondary slot additionally
// honors a cooldown between regenerations.
func (h *Handlers) HandleRerollMission(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["type"]
	if !store.ValidSlot(slot) {
		writeError(w, http.StatusBadRequest, "Tipo de misión inválido")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	instance, err := h.db.GetAssignmentMission(ctx, userID, slot)
	if err != nil {
		h.dbError(w, "reroll mission", err)
		return
	}
	if instance == nil {
		writeError(w, http.StatusNotFound, "No se encontraron misiones asignadas.")
		return
	}
	if instance.Status != store.StatusCompleted && instance.Status != store.StatusFailed {
		writeError(w, http.StatusConflict, "Debes terminar la misión actual antes de pedir otra.")
		return
	}

	// The secondary slot regenerates at most once per cooldown window,
	// counted from the current instance's creation date.
	if slot == store.SlotSecondary {
		cooldown := time.Duration(h.cfg.Limits.SecondaryCooldownDays) * 24 * time.Hour
		if time.Since(instance.CreatedAt) < cooldown {
			writeError(w, http.StatusConflict, "Aún no puedes regenerar la misión secundaria. Espera unos días.")
			return
		}
	}

	next, err := h.db.GetRandomMission(ctx, slot, instance.MissionID)
	if err != nil {
		h.dbError(w, "reroll mission", err)
		return
	}
	if next == nil {
		writeError(w, http.StatusConflict, "No hay misiones disponibles en el catálogo.")
		return
	}

	updated, err := h.db.ReplaceAssignmentMission(ctx, instance.ID, next.ID)
	if err != nil {
		h.dbError(w, "reroll mission", err)
		return
	}

	log.Printf("mission rerolled: %s slot=%s -> %s", shortID(userID), slot, next.Name)
	writeJSON(w, http.StatusOK, updated)
}

type submitResultRequest struct {
	MissionType string `json:"mission_type"`
	Result      string `json:"result"`
}

// HandleSubmitResult processes PUT /assignments/missions/params: the owner
// reports evidence, moving the instance from active to pending review and
// announcing it in the council.
func (h *Handlers) HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req submitResultRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Result = strings.TrimSpace(req.Result)

	if !store.ValidSlot(req.MissionType) {
		writeError(w, http.StatusBadRequest, "Tipo de misión inválido")
		return
	}
	if req.Result == "" {
		writeError(w, http.StatusUnprocessableEntity, "Describe el resultado de tu misión.")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	instance, err := h.db.GetAssignmentMission(ctx, userID, req.MissionType)
	if err != nil {
		h.dbError(w, "submit result", err)
		return
	}
	if instance == nil {
		writeError(w, http.StatusNotFound, "No se encontraron misiones asignadas.")
		return
	}
	if instance.Status != store.StatusActive {
		writeError(w, http.StatusConflict, "La misión ya fue enviada a revisión.")
		return
	}

	if err := h.db.SubmitMissionResult(ctx, instance.ID, req.Result); err != nil {
		h.dbError(w, "submit result", err)
		return
	}

	// The council hears about the submission so voting can start.
	if user, err := h.db.GetUserByID(ctx, userID); err == nil && user != nil && user.GroupID != nil {
		h.announceCouncilEvent(ctx, *user.GroupID, userID,
			content.NewEvent("mission_submitted", user.Name, instance.MissionName, 0))
	}

	instance.Status = store.StatusPendingReview
	instance.Result = &req.Result
	writeJSON(w, http.StatusOK, instance)
}

type voteRequest struct {
	MissionType string `json:"mission_type"`
	Like        bool   `json:"like"`
}

// voteResponse reports the updated tallies and, once quorum is reached,
// the terminal status.
type voteResponse struct {
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
	Status   string `json:"status"`
}

// HandleVote processes PUT /assignments/{userId}/missions/votes: a group
// member passes verdict on a pending mission. A majority of the group
// resolves it.
func (h *Handlers) HandleVote(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de usuario inválido")
		return
	}

	var req voteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !store.ValidSlot(req.MissionType) {
		writeError(w, http.StatusBadRequest, "Tipo de misión inválido")
		return
	}

	ctx := r.Context()
	voterID := userIDFromContext(ctx)
	if voterID == ownerID {
		writeError(w, http.StatusBadRequest, "No puedes votar tu propia misión.")
		return
	}

	groupID, err := h.groupOf(ctx, w, voterID)
	if err != nil {
		return
	}

	owner, err := h.db.GetUserByID(ctx, ownerID)
	if err != nil {
		h.dbError(w, "vote", err)
		return
	}
	if owner == nil || owner.GroupID == nil || *owner.GroupID != groupID {
		writeError(w, http.StatusForbidden, "Solo puedes votar misiones de tu grupo.")
		return
	}

	instance, err := h.db.GetAssignmentMission(ctx, ownerID, req.MissionType)
	if err != nil {
		h.dbError(w, "vote", err)
		return
	}
	if instance == nil {
		writeError(w, http.StatusNotFound, "No se encontraron misiones asignadas.")
		return
	}
	if instance.Status != store.StatusPendingReview {
		writeError(w, http.StatusConflict, "La misión no está en revisión.")
		return
	}

	voted, err := h.db.HasVoted(ctx, instance.ID, voterID)
	if err != nil {
		h.dbError(w, "vote", err)
		return
	}
	if voted {
		writeError(w, http.StatusConflict, "Ya has votado esta misión.")
		return
	}

	likes, dislikes, err := h.db.CastVote(ctx, instance.ID, voterID, req.Like)
	if err != nil {
		h.dbError(w, "vote", err)
		return
	}

	members, err := h.db.CountGroupMembers(ctx, groupID)
	if err != nil {
		h.dbError(w, "vote", err)
		return
	}
	quorum := (members + 1) / 2

	resp := voteResponse{Likes: likes, Dislikes: dislikes, Status: store.StatusPendingReview}
	switch {
	case likes >= quorum:
		resp.Status = store.StatusCompleted
		h.resolveMission(ctx, groupID, owner, instance, store.StatusCompleted)
	case dislikes >= quorum:
		resp.Status = store.StatusFailed
		h.resolveMission(ctx, groupID, owner, instance, store.StatusFailed)
	}

	writeJSON(w, http.StatusOK, resp)
}

// resolveMission moves a reviewed instance to its terminal status, awards
// aura on approval, records history and announces the verdict. Failures past
// the status update are logged rather than surfaced: the vote already
// counted.
func (h *Handlers) resolveMission(ctx context.Context, groupID uuid.UUID,
	owner *store.User, instance *store.AssignmentMission, status string) {

	if err := h.db.ResolveMission(ctx, instance.ID, status); err != nil {
		log.Printf("resolve mission: %v", err)
		return
	}

	eventKind := "mission_failed"
	points := 0
	if status == store.StatusCompleted {
		eventKind = "mission_completed"
		points = instance.Points
		if err := h.db.AddAura(ctx, owner.ID, points); err != nil {
			log.Printf("resolve mission: add aura: %v", err)
		}
	}

	event := &store.Event{
		UserID:      owner.ID,
		GroupID:     &groupID,
		MissionName: instance.MissionName,
		Slot:        instance.Slot,
		Status:      status,
		Points:      points,
	}
	if status == store.StatusCompleted {
		event.LogroName = instance.LogroName
	}
	if err := h.db.RecordEvent(ctx, event); err != nil {
		log.Printf("resolve mission: record event: %v", err)
	}

	h.announceCouncilEvent(ctx, groupID, owner.ID,
		content.NewEvent(eventKind, owner.Name, instance.MissionName, points))

	log.Printf("mission resolved: %s slot=%s status=%s", shortID(owner.ID), instance.Slot, status)
}

// HandleGetPendingReviews processes GET /assignments/reviews: the caller's
// group missions awaiting verdicts.
func (h *Handlers) HandleGetPendingReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)

	groupID, err := h.groupOf(ctx, w, userID)
	if err != nil {
		return
	}

	reviews, err := h.db.GetPendingReviews(ctx, groupID)
	if err != nil {
		h.dbError(w, "pending reviews", err)
		return
	}
	if reviews == nil {
		reviews = []store.PendingReview{}
	}
	writeJSON(w, http.StatusOK, reviews)
}
