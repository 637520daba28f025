package handler

import (
	"net/http"

	"github.com/zachmicha/inno-shop/internal/service"
)

// UserHandler handles the authenticated profile endpoints.
type UserHandler struct {
	auth *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// HandleGetUser returns a user's profile.
// GET /api/users/{id}
// Response: {"user": {...}}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// HandleUpdateEmail replaces a user's email.
// PUT /api/users/{id}/email
// Request:  {"email":"..."}
// Response: {"message":"Email updated"}
func (h *UserHandler) HandleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.UpdateEmail(r.Context(), r.PathValue("id"), req.Email); err != nil {
		writeDomainError(w, "update email", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email updated"})
}

// HandleUpdatePassword replaces a user's password after the store re-verifies
// the current one.
// PUT /api/users/{id}/password
// Request:  {"currentPassword":"...","newPassword":"..."}
// Response: {"message":"Password updated"}
func (h *UserHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), r.PathValue("id"), req.CurrentPassword, req.NewPassword); err != nil {
		writeDomainError(w, "update password", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// HandleUpdateCredentials replaces a user's email and password together.
// PUT /api/users/{id}/credentials
// Request:  {"email":"...","currentPassword":"...","newPassword":"..."}
// Response: {"message":"Email and password updated"}
func (h *UserHandler) HandleUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.UpdateEmailAndPassword(r.Context(), r.PathValue("id"), req.Email, req.CurrentPassword, req.NewPassword); err != nil {
		writeDomainError(w, "update credentials", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email and password updated"})
}

// HandleDeleteUser soft-deletes a user. Repeating the call reports not found
// rather than escalating.
// DELETE /api/users/{id}
// Response: {"message":"User deleted"}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, "delete user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
