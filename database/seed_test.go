package database

import (
	"testing"
)

func TestRunSeedsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("seeding hashes demo passwords, skipping in short mode")
	}

	store := newTestStore(t)

	if err := RunSeeds(store); err != nil {
		t.Fatalf("first RunSeeds failed: %v", err)
	}
	if err := RunSeeds(store); err != nil {
		t.Fatalf("second RunSeeds failed: %v", err)
	}

	courses, err := store.GetAllCourses()
	if err != nil {
		t.Fatalf("GetAllCourses failed: %v", err)
	}
	if len(courses) != 4 {
		t.Errorf("course count = %d, want 4", len(courses))
	}

	achievements, err := store.GetAllAchievements()
	if err != nil {
		t.Fatalf("GetAllAchievements failed: %v", err)
	}
	if len(achievements) != 3 {
		t.Errorf("achievement count = %d, want 3", len(achievements))
	}

	board, err := store.GetLeaderboard(DefaultLeaderboardLimit)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(board) != 4 {
		t.Errorf("seeded users = %d, want 4", len(board))
	}
	if board[0].Username != "MasterCoder99" {
		t.Errorf("top user = %s, want MasterCoder99", board[0].Username)
	}

	demo, err := store.GetUserByUsername("demo")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if demo.XPPoints != 3200 || demo.Level != 4 {
		t.Errorf("demo standing = %d XP level %d, want 3200/4", demo.XPPoints, demo.Level)
	}

	earned, err := store.GetUserAchievements(demo.ID)
	if err != nil {
		t.Fatalf("GetUserAchievements failed: %v", err)
	}
	if len(earned) != 2 {
		t.Errorf("demo achievements = %d, want 2", len(earned))
	}

	pythonBasics := courses[0]
	challenges, err := store.GetChallengesByCourse(pythonBasics.ID)
	if err != nil {
		t.Fatalf("GetChallengesByCourse failed: %v", err)
	}
	if len(challenges) != 5 {
		t.Errorf("Python Basics challenges = %d, want 5", len(challenges))
	}
}
