package database

import (
	"errors"
	"time"

	"github.com/eduventure/eduventure-api/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned by CreateUser on a username conflict.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrChallengeNotFound is returned by CompleteChallenge for an unknown
	// challenge id.
	ErrChallengeNotFound = errors.New("challenge not found")
)

// ProfileUpdate carries the profile fields a user may edit. XP and level
// are deliberately absent: only the completion pathway mutates them.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Avatar      *string
}

// CompletionResult is what CompleteChallenge returns: the completion
// record plus the user's XP and level after the award.
type CompletionResult struct {
	Completion       model.ChallengeCompletion `json:"completion"`
	XPPoints         int                       `json:"xpPoints"`
	Level            int                       `json:"level"`
	AlreadyCompleted bool                      `json:"-"`
}

// Storage is the domain store: the sole authority over entity state. It is
// constructed once at process start and passed by handle to the handlers.
// Implementations: GORMStore (PostgreSQL) and MemStore (in-process maps).
type Storage interface {
	// Lifecycle
	Init() error
	Close() error
	HealthCheck() error

	// Users
	GetUser(id uint) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	CreateUser(user *model.User) error
	UpdateUserProfile(id uint, upd ProfileUpdate) (*model.User, error)
	GetLeaderboard(limit int) ([]model.User, error)

	// Courses
	GetCourse(id uint) (*model.Course, error)
	GetAllCourses() ([]model.Course, error)
	GetFeaturedCourses() ([]model.Course, error)
	CreateCourse(course *model.Course) error

	// Challenges
	GetChallenge(id uint) (*model.Challenge, error)
	GetChallengesByCourse(courseID uint) ([]model.Challenge, error)
	CreateChallenge(challenge *model.Challenge) error

	// Progress
	GetUserProgress(userID uint) ([]model.UserProgress, error)
	GetUserCourseProgress(userID, courseID uint) (*model.UserProgress, error)
	UpsertProgress(userID, courseID uint, progress int) (*model.UserProgress, error)

	// Completions
	GetChallengeCompletion(userID, challengeID uint) (*model.ChallengeCompletion, error)
	CompleteChallenge(userID, challengeID uint, score *int) (*CompletionResult, error)

	// Achievements
	CreateAchievement(achievement *model.Achievement) error
	GetAllAchievements() ([]model.Achievement, error)
	GetUserAchievements(userID uint) ([]model.Achievement, error)
	AwardAchievement(userID, achievementID uint) (*model.UserAchievement, error)

	// Maintenance (cron)
	RecountCourseChallenges() error
	RecordCronRun(entry *model.CronJobLog) error
	FinishCronRun(id uint, status, message string) error
	PruneCronLogs(before time.Time) (int64, error)
}

// DefaultLeaderboardLimit is used when a caller passes limit <= 0.
const DefaultLeaderboardLimit = 10
