package model

import (
	"time"
)

// UserProgress tracks a user's percentage progress through a course.
// Keyed uniquely by (user, course). Completed is derived: it is true
// exactly when Progress is 100, recomputed on every write.
type UserProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"userId"`
	CourseID    uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"courseId"`
	Progress    int       `gorm:"default:0" json:"progress"` // percent, 0-100
	Completed   bool      `gorm:"default:false" json:"completed"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ClampProgress bounds a progress percentage to [0, 100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
