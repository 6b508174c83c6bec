package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/store"
)

func TestHandleCreateGroup(t *testing.T) {
	userID := uuid.New()

	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, Name: "Fundador"}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups", map[string]string{
		"name":        "Los Duros",
		"description": "Grupo de press banca",
	})
	h.HandleCreateGroup(rec, authedRequest(req, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var group store.Group
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("failed to decode group: %v", err)
	}
	if group.Name != "Los Duros" {
		t.Errorf("name = %q", group.Name)
	}
	if group.OwnerID != userID {
		t.Errorf("owner = %s, want the creator", group.OwnerID)
	}
}

func TestHandleCreateGroup_AlreadyMember(t *testing.T) {
	existing := uuid.New()
	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, GroupID: &existing}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups", map[string]string{"name": "Otro Grupo"})
	h.HandleCreateGroup(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	want := "Ya perteneces a un grupo. Sal del grupo actual primero."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleCreateGroup_NameTooShort(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups", map[string]string{"name": "Ya"})
	h.HandleCreateGroup(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleJoinGroup_Full(t *testing.T) {
	groupID := uuid.New()

	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id}, nil
		},
		GetGroupByIDFn: func(ctx context.Context, id uuid.UUID) (*store.Group, error) {
			return &store.Group{ID: id, Name: "Completo", MemberCount: 12}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/groups/members/"+groupID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"group_id": groupID.String()})
	h.HandleJoinGroup(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	want := "El grupo está completo."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleJoinGroup(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	var joined *uuid.UUID
	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id}, nil
		},
		GetGroupByIDFn: func(ctx context.Context, id uuid.UUID) (*store.Group, error) {
			return &store.Group{ID: id, Name: "Con Sitio", MemberCount: 3}, nil
		},
		SetUserGroupFn: func(ctx context.Context, id uuid.UUID, gid *uuid.UUID) error {
			joined = gid
			return nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/groups/members/"+groupID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"group_id": groupID.String()})
	h.HandleJoinGroup(rec, authedRequest(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if joined == nil || *joined != groupID {
		t.Error("expected caller joined to the group")
	}
}

func TestHandleLeaveGroup(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	var left bool
	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, GroupID: &groupID}, nil
		},
		SetUserGroupFn: func(ctx context.Context, id uuid.UUID, gid *uuid.UUID) error {
			left = gid == nil
			return nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/members", nil)
	h.HandleLeaveGroup(rec, authedRequest(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !left {
		t.Error("expected group membership cleared")
	}
}

func TestHandleLeaveGroup_Groupless(t *testing.T) {
	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/members", nil)
	h.HandleLeaveGroup(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleDeleteGroup_OwnerOnly(t *testing.T) {
	groupID := uuid.New()
	ownerID := uuid.New()
	intruderID := uuid.New()

	var deleted bool
	mockStore := &store.MockStore{
		GetGroupByIDFn: func(ctx context.Context, id uuid.UUID) (*store.Group, error) {
			return &store.Group{ID: id, OwnerID: ownerID}, nil
		},
		DeleteGroupFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/"+groupID.String()+"/cascade", nil)
	req = mux.SetURLVars(req, map[string]string{"id": groupID.String()})
	h.HandleDeleteGroup(rec, authedRequest(req, intruderID))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}
	if deleted {
		t.Fatal("group must not be deleted by a non-owner")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/groups/"+groupID.String()+"/cascade", nil)
	req = mux.SetURLVars(req, map[string]string{"id": groupID.String()})
	h.HandleDeleteGroup(rec, authedRequest(req, ownerID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rec.Code)
	}
	if !deleted {
		t.Error("expected group deleted")
	}
}

func TestHandleSendInvite_GroupFull(t *testing.T) {
	groupID := uuid.New()

	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, GroupID: &groupID}, nil
		},
		CountGroupMembersFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 12, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups/invites", map[string]string{"email": "nuevo@example.com"})
	h.HandleSendInvite(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleSendInvite(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	var storedDigest []byte
	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, Name: "Anfitrión", GroupID: &groupID}, nil
		},
		CountGroupMembersFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 4, nil
		},
		CreateInviteFn: func(ctx context.Context, gid, inviterID uuid.UUID, email string, token []byte) (*store.GroupInvite, error) {
			storedDigest = token
			return &store.GroupInvite{ID: uuid.New(), GroupID: gid, InviterID: inviterID, Email: email, Status: store.InvitePending}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups/invites", map[string]string{"email": "nuevo@example.com"})
	h.HandleSendInvite(rec, authedRequest(req, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(storedDigest) == 0 {
		t.Error("expected a token digest persisted with the invite")
	}
}

func TestHandleAcceptInvite(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()
	inviteID := uuid.New()
	userEmail := "invitado@example.com"

	var joined *uuid.UUID
	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, Email: userEmail}, nil
		},
		GetPendingInviteFn: func(ctx context.Context, email string) (*store.GroupInvite, error) {
			return &store.GroupInvite{ID: inviteID, GroupID: groupID, Email: email, Status: store.InvitePending}, nil
		},
		GetGroupByIDFn: func(ctx context.Context, id uuid.UUID) (*store.Group, error) {
			return &store.Group{ID: id, Name: "Los Duros", MemberCount: 4}, nil
		},
		SetUserGroupFn: func(ctx context.Context, id uuid.UUID, gid *uuid.UUID) error {
			joined = gid
			return nil
		},
	}

	h := testHandlers(mockStore)

	token, err := h.invites.Generate(groupID, userEmail)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups/invites/accept", map[string]string{"token": token})
	h.HandleAcceptInvite(rec, authedRequest(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if joined == nil || *joined != groupID {
		t.Error("expected caller joined to the invite's group")
	}
}

func TestHandleAcceptInvite_WrongRecipient(t *testing.T) {
	groupID := uuid.New()

	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			return &store.User{ID: id, Email: "otro@example.com"}, nil
		},
	}

	h := testHandlers(mockStore)

	token, err := h.invites.Generate(groupID, "invitado@example.com")
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/groups/invites/accept", map[string]string{"token": token})
	h.HandleAcceptInvite(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a token minted for someone else, got %d", rec.Code)
	}
}

func TestHandleRevokeInvite_InviterOnly(t *testing.T) {
	inviteID := uuid.New()
	inviterID := uuid.New()

	mockStore := &store.MockStore{
		GetInviteByIDFn: func(ctx context.Context, id uuid.UUID) (*store.GroupInvite, error) {
			return &store.GroupInvite{ID: id, InviterID: inviterID, Status: store.InvitePending}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/invites/"+inviteID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": inviteID.String()})
	h.HandleRevokeInvite(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a stranger, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/groups/invites/"+inviteID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": inviteID.String()})
	h.HandleRevokeInvite(rec, authedRequest(req, inviterID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the inviter, got %d", rec.Code)
	}
}
