package model

import (
	"time"

	"gorm.io/datatypes"
)

// ChallengeType discriminates the shape of a challenge's content payload.
type ChallengeType string

const (
	ChallengeTypeVideo  ChallengeType = "video"
	ChallengeTypeMCQ    ChallengeType = "mcq"
	ChallengeTypeCoding ChallengeType = "coding"
	ChallengeTypeMaze   ChallengeType = "maze"
	ChallengeTypeCareer ChallengeType = "career"
)

// Valid reports whether t is one of the five known challenge types.
func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeTypeVideo, ChallengeTypeMCQ, ChallengeTypeCoding,
		ChallengeTypeMaze, ChallengeTypeCareer:
		return true
	}
	return false
}

// Challenge is a single gamified learning activity within a course. Content
// is a tagged JSON payload whose shape is fixed by Type and validated at
// write time by the content package.
type Challenge struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CourseID    uint           `gorm:"not null;index" json:"courseId"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Type        ChallengeType  `gorm:"type:varchar(20);not null" json:"type"`
	Content     datatypes.JSON `gorm:"not null" json:"content"`
	XPReward    int            `gorm:"column:xp_reward;default:0" json:"xpReward"`
	OrderIndex  int            `gorm:"default:0;index" json:"orderIndex"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// ChallengeCompletion records that a user finished a specific challenge.
// At most one record exists per (user, challenge) pair.
type ChallengeCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_challenge" json:"userId"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:idx_user_challenge" json:"challengeId"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	Score       int       `gorm:"default:0" json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}
