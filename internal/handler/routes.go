package handler

import (
	"net/http"

	"github.com/zachmicha/inno-shop/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Credential
// endpoints are rate limited; profile endpoints require a bearer token.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, limiter *service.TokenBucket) {
	ah := NewAuthHandler(auth)
	uh := NewUserHandler(auth)

	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(limiter, h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.Handle("POST /api/users", limited(ah.HandleRegister))
	mux.Handle("POST /api/users/verify-email", limited(ah.HandleVerifyEmail))
	mux.Handle("POST /api/users/login", limited(ah.HandleLogin))
	mux.Handle("POST /api/users/forgot-password", limited(ah.HandleForgotPassword))
	mux.Handle("POST /api/users/reset-password", limited(ah.HandleResetPassword))

	mux.Handle("GET /api/users/{id}", protected(uh.HandleGetUser))
	mux.Handle("PUT /api/users/{id}/email", protected(uh.HandleUpdateEmail))
	mux.Handle("PUT /api/users/{id}/password", protected(uh.HandleUpdatePassword))
	mux.Handle("PUT /api/users/{id}/credentials", protected(uh.HandleUpdateCredentials))
	mux.Handle("DELETE /api/users/{id}", protected(uh.HandleDeleteUser))

	mux.HandleFunc("GET /healthz", HandleHealthz)
}
