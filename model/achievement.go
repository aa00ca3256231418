package model

import (
	"time"
)

// Achievement is seeded reference data. Condition is a descriptive tag
// (e.g. "complete_first_course"); there is no evaluation engine, awards
// happen through the store API.
type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"not null" json:"description"`
	IconName    string `gorm:"not null" json:"iconName"`
	Condition   string `json:"condition"`
}

// UserAchievement marks an achievement as earned by a user. Awarding is
// idempotent per (user, achievement).
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}
