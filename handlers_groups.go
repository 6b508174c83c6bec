package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/content"
	"github.com/ironbrothers/ironbrothers/store"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleGetGroups processes GET /groups.
func (h *Handlers) HandleGetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.db.GetAllGroups(r.Context())
	if err != nil {
		h.dbError(w, "list groups", err)
		return
	}
	if groups == nil {
		groups = []store.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// HandleCreateGroup processes POST /groups. The creator becomes owner and
// first member.
func (h *Handlers) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if !lengthBetween(req.Name, 3, 50) {
		writeError(w, http.StatusUnprocessableEntity, "El nombre del grupo debe tener entre 3 y 50 caracteres.")
		return
	}
	if content.GraphemeLength(req.Description) > 200 {
		writeError(w, http.StatusUnprocessableEntity, "La descripción del grupo no puede superar 200 caracteres.")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	user, err := h.db.GetUserByID(ctx, userID)
	if err != nil {
		h.dbError(w, "create group", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}
	if user.GroupID != nil {
		writeError(w, http.StatusConflict, "Ya perteneces a un grupo. Sal del grupo actual primero.")
		return
	}

	group, err := h.db.CreateGroup(ctx, userID, req.Name, req.Description)
	if err != nil {
		h.dbError(w, "create group", err)
		return
	}

	log.Printf("group created: %s by %s", shortID(group.ID), shortID(userID))
	writeJSON(w, http.StatusCreated, group)
}

// HandleGetGroup processes GET /groups/{id}, returning the group with its
// member roster.
func (h *Handlers) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de grupo inválido")
		return
	}

	ctx := r.Context()
	group, err := h.db.GetGroupByID(ctx, groupID)
	if err != nil {
		h.dbError(w, "get group", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Grupo no encontrado")
		return
	}

	members, err := h.db.GetGroupMembers(ctx, groupID)
	if err != nil {
		h.dbError(w, "get group", err)
		return
	}
	if members == nil {
		members = []store.GroupMember{}
	}

	writeJSON(w, http.StatusOK, struct {
		*store.Group
		Members []store.GroupMember `json:"members"`
	}{group, members})
}

// HandleJoinGroup processes PUT /groups/members/{group_id}: the caller joins
// the group if it has room.
func (h *Handlers) HandleJoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de grupo inválido")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	user, err := h.db.GetUserByID(ctx, userID)
	if err != nil {
		h.dbError(w, "join group", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}
	if user.GroupID != nil {
		writeError(w, http.StatusConflict, "Ya perteneces a un grupo. Sal del grupo actual primero.")
		return
	}

	group, err := h.db.GetGroupByID(ctx, groupID)
	if err != nil {
		h.dbError(w, "join group", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Grupo no encontrado")
		return
	}
	if group.MemberCount >= h.cfg.Limits.MaxGroupSize {
		writeError(w, http.StatusConflict, "El grupo está completo.")
		return
	}

	if err := h.db.SetUserGroup(ctx, userID, &groupID); err != nil {
		h.dbError(w, "join group", err)
		return
	}

	log.Printf("group join: %s -> %s", shortID(userID), shortID(groupID))
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Te has unido al grupo"})
}

// HandleLeaveGroup processes DELETE /groups/members: the caller leaves their
// current group.
func (h *Handlers) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)

	groupID, err := h.groupOf(ctx, w, userID)
	if err != nil {
		return
	}

	if err := h.db.SetUserGroup(ctx, userID, nil); err != nil {
		h.dbError(w, "leave group", err)
		return
	}

	log.Printf("group leave: %s <- %s", shortID(userID), shortID(groupID))
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Has salido del grupo"})
}

// HandleDeleteGroup processes DELETE /groups/{id}/cascade. Only the owner
// may dissolve the group; members fall back to groupless accounts.
func (h *Handlers) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de grupo inválido")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	group, err := h.db.GetGroupByID(ctx, groupID)
	if err != nil {
		h.dbError(w, "delete group", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Grupo no encontrado")
		return
	}
	if group.OwnerID != userID {
		writeError(w, http.StatusForbidden, "Solo el dueño puede eliminar el grupo.")
		return
	}

	if err := h.db.DeleteGroup(ctx, groupID); err != nil {
		h.dbError(w, "delete group", err)
		return
	}

	log.Printf("group deleted: %s by %s", shortID(groupID), shortID(userID))
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Grupo eliminado"})
}

type inviteRequest struct {
	Email string `json:"email"`
}

// HandleSendInvite processes POST /groups/invites: mails a signed invite
// link for the caller's group.
func (h *Handlers) HandleSendInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.validator.Email(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos. Verifica el formato de tu email.")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	groupID, err := h.groupOf(ctx, w, userID)
	if err != nil {
		return
	}

	count, err := h.db.CountGroupMembers(ctx, groupID)
	if err != nil {
		h.dbError(w, "send invite", err)
		return
	}
	if count >= h.cfg.Limits.MaxGroupSize {
		writeError(w, http.StatusConflict, "El grupo está completo.")
		return
	}

	token, err := h.invites.Generate(groupID, req.Email)
	if err != nil {
		h.dbError(w, "send invite", err)
		return
	}

	invite, err := h.db.CreateInvite(ctx, groupID, userID, req.Email, h.invites.Digest(token))
	if err != nil {
		h.dbError(w, "send invite", err)
		return
	}

	if h.email.IsEnabled() {
		inviter, err := h.db.GetUserByID(ctx, userID)
		if err != nil {
			h.dbError(w, "send invite", err)
			return
		}
		group, err := h.db.GetGroupByID(ctx, groupID)
		if err != nil {
			h.dbError(w, "send invite", err)
			return
		}
		if inviter != nil && group != nil {
			if err := h.email.SendGroupInvite(req.Email, inviter.Name, group.Name, token); err != nil {
				log.Printf("send invite: mail to %s failed: %v", maskEmail(req.Email), err)
				writeError(w, http.StatusBadGateway, "No se pudo enviar el email de invitación.")
				return
			}
		}
	}

	log.Printf("invite sent: group=%s to=%s", shortID(groupID), maskEmail(req.Email))
	writeJSON(w, http.StatusCreated, invite)
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

// HandleAcceptInvite processes POST /groups/invites/accept: a logged-in
// user redeems an invite token from their email.
func (h *Handlers) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	user, err := h.db.GetUserByID(ctx, userID)
	if err != nil {
		h.dbError(w, "accept invite", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}
	if user.GroupID != nil {
		writeError(w, http.StatusConflict, "Ya perteneces a un grupo. Sal del grupo actual primero.")
		return
	}

	data, err := h.invites.VerifyForRecipient(req.Token, user.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "La invitación no es válida o ha expirado.")
		return
	}

	// The stored invite may already be used or revoked even when the
	// token itself still verifies.
	invite, err := h.db.GetPendingInvite(ctx, user.Email)
	if err != nil {
		h.dbError(w, "accept invite", err)
		return
	}
	if invite == nil || invite.GroupID != data.GroupID {
		writeError(w, http.StatusBadRequest, "La invitación no es válida o ha expirado.")
		return
	}

	group, err := h.db.GetGroupByID(ctx, data.GroupID)
	if err != nil {
		h.dbError(w, "accept invite", err)
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Grupo no encontrado")
		return
	}
	if group.MemberCount >= h.cfg.Limits.MaxGroupSize {
		writeError(w, http.StatusConflict, "El grupo está completo.")
		return
	}

	if err := h.db.SetUserGroup(ctx, userID, &data.GroupID); err != nil {
		h.dbError(w, "accept invite", err)
		return
	}
	if err := h.db.MarkInviteUsed(ctx, invite.ID, userID); err != nil {
		log.Printf("accept invite: mark used failed: %v", err)
	}

	log.Printf("invite accepted: %s -> %s", shortID(userID), shortID(data.GroupID))
	writeJSON(w, http.StatusOK, group)
}

// HandleRevokeInvite processes DELETE /groups/invites/{id}.
func (h *Handlers) HandleRevokeInvite(w http.ResponseWriter, r *http.Request) {
	inviteID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de invitación inválido")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	invite, err := h.db.GetInviteByID(ctx, inviteID)
	if err != nil {
		h.dbError(w, "revoke invite", err)
		return
	}
	if invite == nil {
		writeError(w, http.StatusNotFound, "Invitación no encontrada")
		return
	}
	if invite.InviterID != userID {
		writeError(w, http.StatusForbidden, "Solo quien envió la invitación puede revocarla.")
		return
	}

	if err := h.db.RevokeInvite(ctx, inviteID); err != nil {
		h.dbError(w, "revoke invite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Invitación revocada"})
}

// applyPendingInvite joins a freshly registered account to the group of its
// pending invite, when one exists and still has room. Best effort: failures
// log and leave the account groupless.
func (h *Handlers) applyPendingInvite(ctx context.Context, user *store.User) {
	invite, err := h.db.GetPendingInvite(ctx, user.Email)
	if err != nil || invite == nil {
		if err != nil {
			log.Printf("apply invite: lookup failed: %v", err)
		}
		return
	}

	count, err := h.db.CountGroupMembers(ctx, invite.GroupID)
	if err != nil || count >= h.cfg.Limits.MaxGroupSize {
		return
	}

	if err := h.db.SetUserGroup(ctx, user.ID, &invite.GroupID); err != nil {
		log.Printf("apply invite: join failed: %v", err)
		return
	}
	if err := h.db.MarkInviteUsed(ctx, invite.ID, user.ID); err != nil {
		log.Printf("apply invite: mark used failed: %v", err)
	}
	user.GroupID = &invite.GroupID
	log.Printf("invite auto-applied: %s -> %s", shortID(user.ID), shortID(invite.GroupID))
}
