package handler

import (
	"fmt"
	"net/http"

	"github.com/zachmicha/inno-shop/internal/service"
)

// AuthHandler handles the unauthenticated account endpoints: registration,
// email verification, login, and password recovery.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister processes a JSON registration request.
// POST /api/users
// Request:  {"userName":"...","email":"...","password":"..."}
// Response: {"message": "...confirmation token..."}
//
// There is no mail integration; the confirmation token is returned in the
// message so the caller can complete verification.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"userName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, confirmToken, err := h.auth.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("Please confirm your email using this token: %s", confirmToken),
	})
}

// HandleVerifyEmail redeems an email-confirmation token.
// POST /api/users/verify-email
// Request:  {"email":"...","code":"..."}
// Response: {"message":"Email confirmed"}
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		writeDomainError(w, "verify email", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email confirmed"})
}

// HandleLogin verifies credentials and returns a session token.
// POST /api/users/login
// Request:  {"email":"...","password":"..."}
// Response: {"token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	signed, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

// HandleForgotPassword issues a password-reset token.
// POST /api/users/forgot-password
// Request:  {"email":"..."}
// Response: {"message":"...","token":"..."}
//
// The token is returned in the body as a stand-in for a mail delivery
// integration.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	resetToken, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, "forgot password", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset token issued.",
		"token":   resetToken,
	})
}

// HandleResetPassword redeems a reset token and sets a new password.
// POST /api/users/reset-password
// Request:  {"email":"...","token":"...","newPassword":"..."}
// Response: {"message":"Password reset successfully"}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		writeDomainError(w, "reset password", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}
