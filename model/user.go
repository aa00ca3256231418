package model

import (
	"time"
)

// User represents a registered learner
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	DisplayName  string    `json:"displayName"`
	Avatar       string    `json:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Level        int       `gorm:"default:1" json:"level"`
	XPPoints     int       `gorm:"column:xp_points;default:0" json:"xpPoints"`

	// Relationships
	Progress    []UserProgress        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Completions []ChallengeCompletion `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Earned      []UserAchievement     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// LevelForXP returns the level implied by an XP total. Levels start at 1
// and increase every 1000 XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/1000 + 1
}

// PublicUser is the subset of user fields safe to expose on the
// leaderboard and other unauthenticated surfaces.
type PublicUser struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Level       int    `json:"level"`
	XPPoints    int    `json:"xpPoints"`
}

// Public strips private fields from a user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Level:       u.Level,
		XPPoints:    u.XPPoints,
	}
}
