package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zachmicha/inno-shop/internal/config"
	"github.com/zachmicha/inno-shop/internal/handler"
	"github.com/zachmicha/inno-shop/internal/repository/sqlite"
	"github.com/zachmicha/inno-shop/internal/service"
	"github.com/zachmicha/inno-shop/internal/token"
)

const confirmPrefix = "Please confirm your email using this token: "

func newTestServices(t *testing.T) (*service.AuthService, *service.CredentialService) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Cost 4 keeps bcrypt fast in tests.
	creds := service.NewCredentialService(db.Users(), db.Tokens(), 4, time.Hour, time.Hour)
	issuer := token.NewIssuer(config.JWT{
		Issuer:        "test-issuer",
		Audience:      "test-audience",
		Key:           "0123456789abcdef0123456789abcdef",
		ExpiryMinutes: 5,
	})
	return service.NewAuthService(creds, issuer), creds
}

func newTestServer(t *testing.T) (*httptest.Server, *service.CredentialService) {
	t.Helper()
	auth, creds := newTestServices(t)

	// Generous limiter so only the rate-limit tests exercise 429s.
	limiter := service.NewTokenBucket(100, 100)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, limiter)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv, creds
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

// registerAndConfirm drives the registration endpoints and returns the
// created user's id.
func registerAndConfirm(t *testing.T, srv *httptest.Server, creds *service.CredentialService, email, password string) string {
	t.Helper()

	resp := postJSON(t, srv.URL+"/api/users", map[string]string{
		"userName": "user-" + email,
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	msg, _ := decodeBody(t, resp)["message"].(string)
	if !strings.HasPrefix(msg, confirmPrefix) {
		t.Fatalf("unexpected register message: %q", msg)
	}
	confirmToken := strings.TrimPrefix(msg, confirmPrefix)

	resp = postJSON(t, srv.URL+"/api/users/verify-email", map[string]string{
		"email": email,
		"code":  confirmToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-email: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	user, err := creds.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	return user.ID
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	tok, _ := decodeBody(t, resp)["token"].(string)
	if tok == "" {
		t.Fatal("login: expected a session token")
	}
	return tok
}

func authedRequest(t *testing.T, method, url, sessionToken string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestIntegration_AccountLifecycle(t *testing.T) {
	srv, creds := newTestServer(t)

	// 1. Register, confirm, and log in.
	id := registerAndConfirm(t, srv, creds, "integ@example.com", "password123")
	sessionToken := login(t, srv, "integ@example.com", "password123")

	// 2. Fetch the profile with the bearer token.
	resp := authedRequest(t, http.MethodGet, srv.URL+"/api/users/"+id, sessionToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %v", body)
	}
	if user["email"] != "integ@example.com" || user["emailConfirmed"] != true {
		t.Fatalf("unexpected profile: %v", user)
	}

	// 3. Delete the account.
	resp = authedRequest(t, http.MethodDelete, srv.URL+"/api/users/"+id, sessionToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// 4. The session token now belongs to a deleted subject.
	resp = authedRequest(t, http.MethodGet, srv.URL+"/api/users/"+id, sessionToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("get after delete: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// 5. Logging in again fails like a wrong password.
	resp = postJSON(t, srv.URL+"/api/users/login", map[string]string{
		"email":    "integ@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login after delete: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIntegration_LoginBeforeConfirmation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/users", map[string]string{
		"userName": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/users/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unconfirmed login: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIntegration_RegisterDuplicateEmail(t *testing.T) {
	srv, creds := newTestServer(t)

	registerAndConfirm(t, srv, creds, "dup@example.com", "password123")

	resp := postJSON(t, srv.URL+"/api/users", map[string]string{
		"userName": "second",
		"email":    "dup@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIntegration_RegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	// Weak password fails the policy.
	resp := postJSON(t, srv.URL+"/api/users", map[string]string{
		"userName": "alice",
		"email":    "alice@example.com",
		"password": "short",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("weak password: expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Malformed JSON is a plain bad request.
	malformed, err := http.Post(srv.URL+"/api/users", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST malformed: %v", err)
	}
	if malformed.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", malformed.StatusCode)
	}
	malformed.Body.Close()
}

func TestIntegration_PasswordResetFlow(t *testing.T) {
	srv, creds := newTestServer(t)

	registerAndConfirm(t, srv, creds, "reset@example.com", "password123")

	resp := postJSON(t, srv.URL+"/api/users/forgot-password", map[string]string{
		"email": "reset@example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forgot-password: expected 200, got %d", resp.StatusCode)
	}
	resetToken, _ := decodeBody(t, resp)["token"].(string)
	if resetToken == "" {
		t.Fatal("expected a reset token in the response")
	}

	resp = postJSON(t, srv.URL+"/api/users/reset-password", map[string]string{
		"email":       "reset@example.com",
		"token":       resetToken,
		"newPassword": "newpassword456",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset-password: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	login(t, srv, "reset@example.com", "newpassword456")
}

func TestIntegration_ResetPasswordBadToken(t *testing.T) {
	srv, creds := newTestServer(t)

	registerAndConfirm(t, srv, creds, "reset@example.com", "password123")

	resp := postJSON(t, srv.URL+"/api/users/reset-password", map[string]string{
		"email":       "reset@example.com",
		"token":       "bogus",
		"newPassword": "newpassword456",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad token: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIntegration_UpdatePassword(t *testing.T) {
	srv, creds := newTestServer(t)

	id := registerAndConfirm(t, srv, creds, "upd@example.com", "password123")
	sessionToken := login(t, srv, "upd@example.com", "password123")

	// Wrong current password fails generically.
	resp := authedRequest(t, http.MethodPut, srv.URL+"/api/users/"+id+"/password", sessionToken, map[string]string{
		"currentPassword": "not-the-password",
		"newPassword":     "newpassword456",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong current: expected 400, got %d", resp.StatusCode)
	}
	if msg, _ := decodeBody(t, resp)["error"].(string); msg != "Something went wrong." {
		t.Fatalf("expected generic failure message, got %q", msg)
	}

	// Correct current password succeeds.
	resp = authedRequest(t, http.MethodPut, srv.URL+"/api/users/"+id+"/password", sessionToken, map[string]string{
		"currentPassword": "password123",
		"newPassword":     "newpassword456",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update password: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	login(t, srv, "upd@example.com", "newpassword456")
}

func TestIntegration_UpdateEmail(t *testing.T) {
	srv, creds := newTestServer(t)

	id := registerAndConfirm(t, srv, creds, "old@example.com", "password123")
	sessionToken := login(t, srv, "old@example.com", "password123")

	resp := authedRequest(t, http.MethodPut, srv.URL+"/api/users/"+id+"/email", sessionToken, map[string]string{
		"email": "new@example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update email: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	login(t, srv, "new@example.com", "password123")
}

func TestIntegration_GetUnknownUser(t *testing.T) {
	srv, creds := newTestServer(t)

	registerAndConfirm(t, srv, creds, "known@example.com", "password123")
	sessionToken := login(t, srv, "known@example.com", "password123")

	resp := authedRequest(t, http.MethodGet, srv.URL+"/api/users/no-such-id", sessionToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", resp.StatusCode)
	}
	if msg, _ := decodeBody(t, resp)["error"].(string); msg != "User not found." {
		t.Fatalf("expected not-found message, got %q", msg)
	}
}

func TestIntegration_SecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}
