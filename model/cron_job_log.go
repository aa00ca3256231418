package model

import (
	"time"
)

// Cron job statuses
const (
	CronJobStatusRunning   = "running"
	CronJobStatusCompleted = "completed"
	CronJobStatusFailed    = "failed"
)

// CronJobLog records a single run of a scheduled job.
type CronJobLog struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	JobName    string     `gorm:"not null;index" json:"jobName"`
	Status     string     `gorm:"type:varchar(20);not null" json:"status"`
	Message    string     `gorm:"type:text" json:"message,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
