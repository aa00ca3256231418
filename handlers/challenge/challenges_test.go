package challenge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/model"
	authutil "github.com/eduventure/eduventure-api/utils/auth"
	"github.com/eduventure/eduventure-api/utils/middleware"
)

type testEnv struct {
	app    *fiber.App
	store  database.Storage
	cookie *http.Cookie
	user   *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := database.StartMem()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	sessions := authutil.NewSessionManager(authutil.SessionConfig{
		Secret: "test-secret",
	}, authutil.NewMemorySessionStore())
	authMiddleware := middleware.NewAuthMiddleware(sessions, store)
	handler := NewChallengeHandler(store)

	app := fiber.New()
	app.Get("/api/courses/:courseId/challenges", authMiddleware.Required(), handler.ListByCourse)
	app.Get("/api/challenges/:id", authMiddleware.Required(), handler.GetChallenge)
	app.Post("/api/challenges/:id/complete", authMiddleware.Required(), handler.Complete)

	user := &model.User{Username: "alice", PasswordHash: "x"}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	token, err := sessions.Issue(context.Background(), user.ID, user.Username)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	return &testEnv{
		app:    app,
		store:  store,
		cookie: &http.Cookie{Name: authutil.SessionCookieName, Value: token},
		user:   user,
	}
}

func (e *testEnv) seedChallenge(t *testing.T, xpReward, orderIndex int) *model.Challenge {
	t.Helper()

	course := &model.Course{Title: "Python Basics", Difficulty: model.DifficultyBeginner, Category: "Programming"}
	if err := e.store.CreateCourse(course); err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}

	raw, _ := json.Marshal(map[string]interface{}{
		"task":           "print hello",
		"starterCode":    "",
		"expectedOutput": "Hello, World!",
		"points":         10,
	})
	challenge := &model.Challenge{
		CourseID:    course.ID,
		Title:       "Coding Challenge",
		Description: "d",
		Type:        model.ChallengeTypeCoding,
		Content:     datatypes.JSON(raw),
		XPReward:    xpReward,
		OrderIndex:  orderIndex,
	}
	if err := e.store.CreateChallenge(challenge); err != nil {
		t.Fatalf("CreateChallenge failed: %v", err)
	}
	return challenge
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(e.cookie)
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

type completeBody struct {
	Completion struct {
		ID        uint `json:"id"`
		Score     int  `json:"score"`
		Completed bool `json:"completed"`
	} `json:"completion"`
	User struct {
		XPPoints int `json:"xpPoints"`
		Level    int `json:"level"`
	} `json:"user"`
}

func TestCompleteChallenge(t *testing.T) {
	env := newTestEnv(t)
	ch := env.seedChallenge(t, 250, 0)

	resp := env.do(t, http.MethodPost, "/api/challenges/"+itoa(ch.ID)+"/complete", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body completeBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.User.XPPoints != 250 || body.User.Level != 1 {
		t.Errorf("user standing = %+v, want 250 XP at level 1", body.User)
	}
	if body.Completion.Score != 250 {
		t.Errorf("score = %d, want full reward 250", body.Completion.Score)
	}
}

func TestCompleteChallengeIdempotentOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ch := env.seedChallenge(t, 300, 0)
	path := "/api/challenges/" + itoa(ch.ID) + "/complete"

	first := env.do(t, http.MethodPost, path, "")
	second := env.do(t, http.MethodPost, path, "")

	var a, b completeBody
	if err := json.NewDecoder(first.Body).Decode(&a); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := json.NewDecoder(second.Body).Decode(&b); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if second.StatusCode != http.StatusOK {
		t.Fatalf("second status = %d, want 200", second.StatusCode)
	}
	if a.User.XPPoints != b.User.XPPoints || a.Completion.ID != b.Completion.ID {
		t.Errorf("re-completion changed state: %+v vs %+v", a, b)
	}
}

func TestCompleteUnknownChallenge(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/challenges/9999/complete", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	user, err := env.store.GetUser(env.user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.XPPoints != 0 || user.Level != 1 {
		t.Errorf("failed completion mutated user: xp=%d level=%d", user.XPPoints, user.Level)
	}
}

func TestCompleteWithScoreBody(t *testing.T) {
	env := newTestEnv(t)
	ch := env.seedChallenge(t, 200, 0)

	resp := env.do(t, http.MethodPost, "/api/challenges/"+itoa(ch.ID)+"/complete", `{"score":120}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body completeBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Completion.Score != 120 {
		t.Errorf("score = %d, want 120", body.Completion.Score)
	}
	if body.User.XPPoints != 120 {
		t.Errorf("xp = %d, want 120", body.User.XPPoints)
	}
}

func TestListChallengesOrdered(t *testing.T) {
	env := newTestEnv(t)

	course := &model.Course{Title: "Python Basics", Difficulty: model.DifficultyBeginner, Category: "Programming"}
	if err := env.store.CreateCourse(course); err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}
	raw, _ := json.Marshal(map[string]interface{}{
		"task": "t", "starterCode": "", "expectedOutput": "x", "points": 1,
	})
	for _, idx := range []int{2, 0, 1} {
		ch := &model.Challenge{
			CourseID: course.ID, Title: "c", Description: "d",
			Type: model.ChallengeTypeCoding, Content: datatypes.JSON(raw),
			XPReward: 100, OrderIndex: idx,
		}
		if err := env.store.CreateChallenge(ch); err != nil {
			t.Fatalf("CreateChallenge failed: %v", err)
		}
	}

	resp := env.do(t, http.MethodGet, "/api/courses/"+itoa(course.ID)+"/challenges", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var challenges []model.Challenge
	if err := json.NewDecoder(resp.Body).Decode(&challenges); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(challenges) != 3 {
		t.Fatalf("challenge count = %d, want 3", len(challenges))
	}
	for i, want := range []int{0, 1, 2} {
		if challenges[i].OrderIndex != want {
			t.Errorf("position %d has orderIndex %d, want %d", i, challenges[i].OrderIndex, want)
		}
	}
}

func TestListChallengesUnknownCourse(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/courses/42/challenges", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
