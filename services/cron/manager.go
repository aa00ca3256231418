package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/model"
	"github.com/eduventure/eduventure-api/utils/cache"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	store database.Storage
	cache *cache.RedisCache
}

// NewCronManager creates a new cron manager. The cache is optional and
// only used by the leaderboard refresh job.
func NewCronManager(store database.Storage, redisCache *cache.RedisCache) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:  c,
		store: store,
		cache: redisCache,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every 5 minutes: Refresh the cached leaderboard
	_, err := m.cron.AddFunc("0 */5 * * * *", func() {
		m.RefreshLeaderboardCache()
	})
	if err != nil {
		return err
	}

	// 2. Every hour: Recount challenges per course
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.RecountCourseChallenges()
	})
	if err != nil {
		return err
	}

	// 3. Daily at 2 AM: Prune old cron job logs
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.PruneCronLogs()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart logs the start of a cron job and returns the log row ID.
func (m *CronManager) logJobStart(jobName string) uint {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronJobStatusRunning,
		StartedAt: time.Now(),
	}
	if err := m.store.RecordCronRun(&entry); err != nil {
		log.Printf("[CRON] Failed to record job start for %s: %v", jobName, err)
		return 0
	}
	return entry.ID
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(id uint, jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	if id == 0 {
		return
	}
	if err := m.store.FinishCronRun(id, model.CronJobStatusCompleted, message); err != nil {
		log.Printf("[CRON] Failed to record job completion for %s: %v", jobName, err)
	}
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(id uint, jobName string, jobErr error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, jobErr)

	if id == 0 {
		return
	}
	if err := m.store.FinishCronRun(id, model.CronJobStatusFailed, jobErr.Error()); err != nil {
		log.Printf("[CRON] Failed to record job failure for %s: %v", jobName, err)
	}
}
