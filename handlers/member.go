package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/services"
)

// MemberHandler serves the member projections and the administrative
// member endpoints.
type MemberHandler struct {
	queries services.QueryService
	members services.MemberService
}

func NewMemberHandler(queries services.QueryService, members services.MemberService) *MemberHandler {
	return &MemberHandler{queries: queries, members: members}
}

// List godoc
// GET /api/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.queries.ListMembers(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, members)
}

// Get godoc
// GET /api/members/{id}
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.queries.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, member)
}

// Sessions godoc
// GET /api/members/{id}/sessions
// A member who never attended gets an empty list, not a 404.
func (h *MemberHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.queries.MemberSessions(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, sessions)
}

// Games godoc
// GET /api/members/{id}/games
func (h *MemberHandler) Games(w http.ResponseWriter, r *http.Request) {
	games, err := h.queries.MemberGames(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, games)
}

// Register godoc
// POST /api/members
// Body: { "name": "Ann", "discord_name": "ann", "is_admin": false }
//
// 409 responses carry the member that already holds the handle.
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req models.RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.members.RegisterMember(r.Context(), actor, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, member)
}

// Update godoc
// PATCH /api/members/{id}
// Body: { "in_rotation": false }
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req models.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.members.SetRotation(r.Context(), actor, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, member)
}

// Remove godoc
// DELETE /api/members/{id}
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	if err := h.members.RemoveMember(r.Context(), actor, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}
