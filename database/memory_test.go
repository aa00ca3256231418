package database

import (
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/eduventure/eduventure-api/model"
)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	store := StartMem()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return store
}

func createTestUser(t *testing.T, store Storage, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
	}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func createTestCourse(t *testing.T, store Storage, title string) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:      title,
		Difficulty: model.DifficultyBeginner,
		Category:   "Programming",
	}
	if err := store.CreateCourse(course); err != nil {
		t.Fatalf("CreateCourse(%s) failed: %v", title, err)
	}
	return course
}

func createTestChallenge(t *testing.T, store Storage, courseID uint, xpReward, orderIndex int) *model.Challenge {
	t.Helper()
	content, _ := json.Marshal(map[string]interface{}{
		"interviewQuestions": []map[string]string{
			{"question": "q", "answer": "a"},
		},
		"resources": []map[string]string{},
		"points":    5,
	})
	challenge := &model.Challenge{
		CourseID:    courseID,
		Title:       "Challenge",
		Description: "d",
		Type:        model.ChallengeTypeCareer,
		Content:     datatypes.JSON(content),
		XPReward:    xpReward,
		OrderIndex:  orderIndex,
	}
	if err := store.CreateChallenge(challenge); err != nil {
		t.Fatalf("CreateChallenge failed: %v", err)
	}
	return challenge
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "alice")

	err := store.CreateUser(&model.User{Username: "alice", PasswordHash: "x"})
	if err != ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateUserDefaults(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")

	if user.Level != 1 {
		t.Errorf("new user level = %d, want 1", user.Level)
	}
	if user.XPPoints != 0 {
		t.Errorf("new user xp = %d, want 0", user.XPPoints)
	}
	if user.DisplayName != "alice" {
		t.Errorf("display name = %q, want username fallback", user.DisplayName)
	}
}

func TestCompleteChallengeLevelInvariant(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	course := createTestCourse(t, store, "Python Basics")

	// Four 250 XP challenges push the user exactly to 1000 XP.
	for i := 0; i < 4; i++ {
		ch := createTestChallenge(t, store, course.ID, 250, i)
		result, err := store.CompleteChallenge(user.ID, ch.ID, nil)
		if err != nil {
			t.Fatalf("CompleteChallenge failed: %v", err)
		}
		if want := result.XPPoints/1000 + 1; result.Level != want {
			t.Errorf("after %d XP: level = %d, want %d", result.XPPoints, result.Level, want)
		}
	}

	updated, err := store.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updated.XPPoints != 1000 {
		t.Errorf("xp = %d, want 1000", updated.XPPoints)
	}
	if updated.Level != 2 {
		t.Errorf("level = %d, want 2", updated.Level)
	}
}

func TestCompleteChallengeIdempotent(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	course := createTestCourse(t, store, "Python Basics")
	ch := createTestChallenge(t, store, course.ID, 300, 0)

	first, err := store.CompleteChallenge(user.ID, ch.ID, nil)
	if err != nil {
		t.Fatalf("first CompleteChallenge failed: %v", err)
	}
	second, err := store.CompleteChallenge(user.ID, ch.ID, nil)
	if err != nil {
		t.Fatalf("second CompleteChallenge failed: %v", err)
	}

	if !second.AlreadyCompleted {
		t.Error("second completion should report AlreadyCompleted")
	}
	if second.XPPoints != first.XPPoints {
		t.Errorf("re-completion changed xp: %d -> %d", first.XPPoints, second.XPPoints)
	}
	if second.Completion.ID != first.Completion.ID {
		t.Errorf("re-completion stored a new record: %d vs %d", first.Completion.ID, second.Completion.ID)
	}
}

func TestCompleteChallengeNeverDecreasesXP(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	course := createTestCourse(t, store, "Python Basics")

	lastXP, lastLevel := 0, 1
	for i, reward := range []int{0, 100, 50, 900, 10} {
		ch := createTestChallenge(t, store, course.ID, reward, i)
		result, err := store.CompleteChallenge(user.ID, ch.ID, nil)
		if err != nil {
			t.Fatalf("CompleteChallenge failed: %v", err)
		}
		if result.XPPoints < lastXP {
			t.Errorf("xp decreased: %d -> %d", lastXP, result.XPPoints)
		}
		if result.Level < lastLevel {
			t.Errorf("level decreased: %d -> %d", lastLevel, result.Level)
		}
		lastXP, lastLevel = result.XPPoints, result.Level
	}
}

func TestCompleteChallengeScoreClamped(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	course := createTestCourse(t, store, "Python Basics")
	ch := createTestChallenge(t, store, course.ID, 200, 0)

	score := 9999
	result, err := store.CompleteChallenge(user.ID, ch.ID, &score)
	if err != nil {
		t.Fatalf("CompleteChallenge failed: %v", err)
	}
	if result.Completion.Score != 200 {
		t.Errorf("score = %d, want clamp to xp reward 200", result.Completion.Score)
	}

	user2 := createTestUser(t, store, "bob")
	negative := -5
	result, err = store.CompleteChallenge(user2.ID, ch.ID, &negative)
	if err != nil {
		t.Fatalf("CompleteChallenge failed: %v", err)
	}
	if result.Completion.Score != 0 {
		t.Errorf("score = %d, want clamp to 0", result.Completion.Score)
	}
}

func TestCompleteChallengeUnknownChallenge(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")

	_, err := store.CompleteChallenge(user.ID, 9999, nil)
	if err != ErrChallengeNotFound {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}

	// No state may change on a failed completion.
	updated, _ := store.GetUser(user.ID)
	if updated.XPPoints != 0 || updated.Level != 1 {
		t.Errorf("failed completion mutated user: xp=%d level=%d", updated.XPPoints, updated.Level)
	}
}

func TestAwardAchievementIdempotent(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	ach := &model.Achievement{Title: "First Quest", Description: "d", IconName: "trophy"}
	if err := store.CreateAchievement(ach); err != nil {
		t.Fatalf("CreateAchievement failed: %v", err)
	}

	first, err := store.AwardAchievement(user.ID, ach.ID)
	if err != nil {
		t.Fatalf("first AwardAchievement failed: %v", err)
	}
	second, err := store.AwardAchievement(user.ID, ach.ID)
	if err != nil {
		t.Fatalf("second AwardAchievement failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("duplicate award stored: ids %d and %d", first.ID, second.ID)
	}

	earned, err := store.GetUserAchievements(user.ID)
	if err != nil {
		t.Fatalf("GetUserAchievements failed: %v", err)
	}
	if len(earned) != 1 {
		t.Errorf("earned achievements = %d, want exactly 1", len(earned))
	}
}

func TestAwardAchievementUnknownAchievement(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")

	if _, err := store.AwardAchievement(user.ID, 42); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaderboardOrderingAndTies(t *testing.T) {
	store := newTestStore(t)

	users := []struct {
		name string
		xp   int
	}{
		{"first", 500},
		{"second", 2000},
		{"third", 500},
		{"fourth", 100},
	}
	for _, u := range users {
		if err := store.CreateUser(&model.User{
			Username:     u.name,
			PasswordHash: "x",
			XPPoints:     u.xp,
		}); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	board, err := store.GetLeaderboard(10)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}

	want := []string{"second", "first", "third", "fourth"}
	if len(board) != len(want) {
		t.Fatalf("leaderboard size = %d, want %d", len(board), len(want))
	}
	for i, username := range want {
		if board[i].Username != username {
			t.Errorf("rank %d = %s, want %s", i, board[i].Username, username)
		}
	}
}

func TestLeaderboardTruncation(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"a", "bb", "ccc"} {
		createTestUser(t, store, name+"user")
	}

	board, err := store.GetLeaderboard(2)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(board) != 2 {
		t.Errorf("leaderboard size = %d, want 2", len(board))
	}
}

func TestUpsertProgressInPlace(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	course := createTestCourse(t, store, "Python Basics")

	first, err := store.UpsertProgress(user.ID, course.ID, 40)
	if err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}
	if first.Progress != 40 || first.Completed {
		t.Errorf("progress = %d completed = %v, want 40/false", first.Progress, first.Completed)
	}

	second, err := store.UpsertProgress(user.ID, course.ID, 100)
	if err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %d vs %d", first.ID, second.ID)
	}
	if !second.Completed {
		t.Error("progress 100 should mark the course completed")
	}
	if !second.LastUpdated.After(first.LastUpdated) {
		t.Errorf("lastUpdated did not increase: %v -> %v", first.LastUpdated, second.LastUpdated)
	}

	rows, err := store.GetUserProgress(user.ID)
	if err != nil {
		t.Fatalf("GetUserProgress failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("progress rows = %d, want 1", len(rows))
	}
}

func TestUpsertProgressClamps(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")
	course := createTestCourse(t, store, "Python Basics")

	row, err := store.UpsertProgress(user.ID, course.ID, 150)
	if err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}
	if row.Progress != 100 || !row.Completed {
		t.Errorf("progress = %d completed = %v, want clamp to 100/true", row.Progress, row.Completed)
	}

	row, err = store.UpsertProgress(user.ID, course.ID, -10)
	if err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}
	if row.Progress != 0 || row.Completed {
		t.Errorf("progress = %d completed = %v, want clamp to 0/false", row.Progress, row.Completed)
	}
}

func TestChallengesOrderedByOrderIndex(t *testing.T) {
	store := newTestStore(t)
	course := createTestCourse(t, store, "Python Basics")

	createTestChallenge(t, store, course.ID, 100, 2)
	createTestChallenge(t, store, course.ID, 100, 0)
	createTestChallenge(t, store, course.ID, 100, 1)

	challenges, err := store.GetChallengesByCourse(course.ID)
	if err != nil {
		t.Fatalf("GetChallengesByCourse failed: %v", err)
	}
	for i := 1; i < len(challenges); i++ {
		if challenges[i].OrderIndex < challenges[i-1].OrderIndex {
			t.Errorf("challenges out of order at %d: %d before %d",
				i, challenges[i-1].OrderIndex, challenges[i].OrderIndex)
		}
	}
}

func TestUpdateUserProfilePartial(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice")

	bio := "hello"
	updated, err := store.UpdateUserProfile(user.ID, ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}
	if updated.Bio != "hello" {
		t.Errorf("bio = %q, want %q", updated.Bio, "hello")
	}
	if updated.DisplayName != "alice" {
		t.Errorf("display name changed unexpectedly: %q", updated.DisplayName)
	}
	if updated.XPPoints != user.XPPoints || updated.Level != user.Level {
		t.Error("profile update must not touch xp or level")
	}
}

func TestPruneCronLogs(t *testing.T) {
	store := newTestStore(t)

	old := &model.CronJobLog{JobName: "job", Status: model.CronJobStatusRunning, StartedAt: time.Now().Add(-48 * time.Hour)}
	recent := &model.CronJobLog{JobName: "job", Status: model.CronJobStatusRunning, StartedAt: time.Now()}
	if err := store.RecordCronRun(old); err != nil {
		t.Fatalf("RecordCronRun failed: %v", err)
	}
	if err := store.RecordCronRun(recent); err != nil {
		t.Fatalf("RecordCronRun failed: %v", err)
	}

	deleted, err := store.PruneCronLogs(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneCronLogs failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
