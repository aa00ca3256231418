package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	authutil "github.com/eduventure/eduventure-api/utils/auth"
	"github.com/eduventure/eduventure-api/utils/middleware"
)

func newTestApp(t *testing.T) (*fiber.App, database.Storage) {
	t.Helper()

	store := database.StartMem()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	sessions := authutil.NewSessionManager(authutil.SessionConfig{
		Secret: "test-secret",
	}, authutil.NewMemorySessionStore())
	authMiddleware := middleware.NewAuthMiddleware(sessions, store)
	handler := NewAuthHandler(store, sessions, nil)

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)
	app.Post("/api/auth/login", handler.Login)
	app.Post("/api/auth/logout", authMiddleware.Required(), handler.Logout)
	app.Get("/api/auth/me", authMiddleware.Required(), handler.Me)

	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == authutil.SessionCookieName {
			return c
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}

func TestRegister(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", `{"username":"alice","password":"secret123"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		ID          uint   `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"displayName"`
		Level       int    `json:"level"`
		XPPoints    int    `json:"xpPoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Username != "alice" || body.Level != 1 || body.XPPoints != 0 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.DisplayName != "alice" {
		t.Errorf("display name = %q, want username fallback", body.DisplayName)
	}
	sessionCookie(t, resp)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app, _ := newTestApp(t)

	postJSON(t, app, "/api/auth/register", `{"username":"alice","password":"secret123"}`)
	resp := postJSON(t, app, "/api/auth/register", `{"username":"alice","password":"other456"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Message == "" {
		t.Error("error body must carry a message")
	}
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","password":"secret123"}`},
		{"short password", `{"username":"alice","password":"abc"}`},
		{"missing fields", `{}`},
		{"bad username chars", `{"username":"bad user!","password":"secret123"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/auth/register", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	app, _ := newTestApp(t)
	postJSON(t, app, "/api/auth/register", `{"username":"alice","password":"secret123"}`)

	resp := postJSON(t, app, "/api/auth/login", `{"username":"alice","password":"secret123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	cookie := sessionCookie(t, resp)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	meResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("me request failed: %v", err)
	}
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", meResp.StatusCode)
	}

	var me struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(meResp.Body).Decode(&me); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if me.Username != "alice" {
		t.Errorf("username = %q, want alice", me.Username)
	}
	if me.Password != "" {
		t.Error("password material must never appear on the wire")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := newTestApp(t)
	postJSON(t, app, "/api/auth/register", `{"username":"alice","password":"secret123"}`)

	resp := postJSON(t, app, "/api/auth/login", `{"username":"alice","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestMeWithoutSession(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Message != "Unauthorized" {
		t.Errorf("message = %q, want Unauthorized", body.Message)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app, _ := newTestApp(t)
	resp := postJSON(t, app, "/api/auth/register", `{"username":"alice","password":"secret123"}`)
	cookie := sessionCookie(t, resp)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	logoutResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if logoutResp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", logoutResp.StatusCode)
	}

	// The old cookie must not authenticate anymore.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	meResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("me request failed: %v", err)
	}
	if meResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d, want 401", meResp.StatusCode)
	}
}
