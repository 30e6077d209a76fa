package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/edithlab/growthboard/internal/domain/fault"
)

// UserDependencies defines the interface for account provisioning.
type UserDependencies interface {
	Signup(ctx context.Context, email, name string) (string, error)
	LinkSocialAccount(ctx context.Context, email, socialID string) error
}

// UsersHandler handles account provisioning requests.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

type signupRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type signupResponse struct {
	Success    bool   `json:"success"`
	InviteCode string `json:"inviteCode,omitempty"`
	Message    string `json:"message,omitempty"`
}

type linkRequest struct {
	Email    string `json:"email"`
	SocialID string `json:"socialId"`
}

// HandleSignup handles POST /users requests.
func (h *UsersHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_user"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	code, err := h.deps.Signup(r.Context(), req.Email, req.Name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, signupResponse{Success: true, InviteCode: code})
	case errors.Is(err, fault.ErrConflict):
		writeJSON(w, http.StatusOK, signupResponse{Success: false, Message: "Account already exists"})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// HandleLinkSocial handles POST /users/link requests.
func (h *UsersHandler) HandleLinkSocial(w http.ResponseWriter, r *http.Request) {
	const op = "api.link_social"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.SocialID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	err := h.deps.LinkSocialAccount(r.Context(), req.Email, req.SocialID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, softResponse{Success: true, Message: "Social account linked"})
	case errors.Is(err, fault.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
