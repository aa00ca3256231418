package cache

import "time"

// Shared cache keys and lifetimes.
const (
	// LeaderboardKey holds the serialized top ranking.
	LeaderboardKey = "cache:leaderboard"

	// LeaderboardTTL outlives the refresh interval so a missed cron run
	// does not empty the leaderboard.
	LeaderboardTTL = 10 * time.Minute
)
