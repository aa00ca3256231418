package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/model"
	"github.com/eduventure/eduventure-api/utils/cache"
)

// RefreshLeaderboardCache recomputes the top ranking and stores it in
// Redis so the leaderboard endpoint serves hot data between refreshes.
func (m *CronManager) RefreshLeaderboardCache() {
	jobName := "refresh_leaderboard_cache"
	id := m.logJobStart(jobName)

	if m.cache == nil {
		m.logJobComplete(id, jobName, "Cache not configured, nothing to refresh")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := m.store.GetLeaderboard(database.DefaultLeaderboardLimit)
	if err != nil {
		m.logJobError(id, jobName, fmt.Errorf("failed to query leaderboard: %w", err))
		return
	}

	entries := make([]model.PublicUser, 0, len(users))
	for i := range users {
		entries = append(entries, users[i].Public())
	}

	if err := m.cache.SetJSON(ctx, cache.LeaderboardKey, entries, cache.LeaderboardTTL); err != nil {
		m.logJobError(id, jobName, fmt.Errorf("failed to store leaderboard: %w", err))
		return
	}

	m.logJobComplete(id, jobName, fmt.Sprintf("Cached %d leaderboard entries", len(entries)))
}

// RecountCourseChallenges reconciles each course's totalChallenges with
// the actual number of challenges rows.
func (m *CronManager) RecountCourseChallenges() {
	jobName := "recount_course_challenges"
	id := m.logJobStart(jobName)

	if err := m.store.RecountCourseChallenges(); err != nil {
		m.logJobError(id, jobName, fmt.Errorf("failed to recount challenges: %w", err))
		return
	}

	m.logJobComplete(id, jobName, "Course challenge counts reconciled")
}

// PruneCronLogs deletes job log rows older than 30 days.
func (m *CronManager) PruneCronLogs() {
	jobName := "prune_cron_logs"
	id := m.logJobStart(jobName)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	deleted, err := m.store.PruneCronLogs(cutoff)
	if err != nil {
		m.logJobError(id, jobName, fmt.Errorf("failed to prune logs: %w", err))
		return
	}

	m.logJobComplete(id, jobName, fmt.Sprintf("Deleted %d old log rows", deleted))
}
