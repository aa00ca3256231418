package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eduventure/eduventure-api/config"
	"github.com/eduventure/eduventure-api/content"
	"github.com/eduventure/eduventure-api/model"
)

// GORMStore is the PostgreSQL-backed Storage implementation.
type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL.
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs AutoMigrate for all models.
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Challenge{},
		&model.UserProgress{},
		&model.ChallengeCompletion{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.CronJobLog{},
	)
	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection.
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive.
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ---------------------------------------------------------------- Users

func (s *GORMStore) GetUser(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *GORMStore) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// CreateUser inserts a new user. The uniqueness check lives in the store,
// not the caller. The level is always derived from the XP total.
func (s *GORMStore) CreateUser(user *model.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		if user.DisplayName == "" {
			user.DisplayName = user.Username
		}
		if user.XPPoints < 0 {
			user.XPPoints = 0
		}
		user.Level = model.LevelForXP(user.XPPoints)

		return tx.Create(user).Error
	})
}

func (s *GORMStore) UpdateUserProfile(id uint, upd ProfileUpdate) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}

	if upd.DisplayName != nil {
		user.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetLeaderboard returns users by XP descending. Ties keep insertion
// order, which for sequential ids is id ascending.
func (s *GORMStore) GetLeaderboard(limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	var users []model.User
	err := s.db.Order("xp_points DESC, id ASC").Limit(limit).Find(&users).Error
	return users, err
}

// ---------------------------------------------------------------- Courses

func (s *GORMStore) GetCourse(id uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.First(&course, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &course, nil
}

func (s *GORMStore) GetAllCourses() ([]model.Course, error) {
	var courses []model.Course
	err := s.db.Order("id ASC").Find(&courses).Error
	return courses, err
}

func (s *GORMStore) GetFeaturedCourses() ([]model.Course, error) {
	var courses []model.Course
	err := s.db.Where("featured = ?", true).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (s *GORMStore) CreateCourse(course *model.Course) error {
	return s.db.Create(course).Error
}

// ------------------------------------------------------------- Challenges

func (s *GORMStore) GetChallenge(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	if err := s.db.First(&challenge, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &challenge, nil
}

func (s *GORMStore) GetChallengesByCourse(courseID uint) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := s.db.Where("course_id = ?", courseID).
		Order("order_index ASC, id ASC").
		Find(&challenges).Error
	return challenges, err
}

// CreateChallenge validates the content payload against the challenge
// type before writing. Malformed content never reaches the table.
func (s *GORMStore) CreateChallenge(challenge *model.Challenge) error {
	if !challenge.Type.Valid() {
		return fmt.Errorf("%w: %q", content.ErrUnknownType, challenge.Type)
	}
	if err := content.Validate(challenge.Type, challenge.Content); err != nil {
		return err
	}
	return s.db.Create(challenge).Error
}

// --------------------------------------------------------------- Progress

func (s *GORMStore) GetUserProgress(userID uint) ([]model.UserProgress, error) {
	var progress []model.UserProgress
	err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&progress).Error
	return progress, err
}

func (s *GORMStore) GetUserCourseProgress(userID, courseID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &progress, nil
}

// UpsertProgress creates or updates the per-course progress row. Progress
// is clamped to [0,100] and Completed is derived from it on every write.
func (s *GORMStore) UpsertProgress(userID, courseID uint, progress int) (*model.UserProgress, error) {
	progress = model.ClampProgress(progress)

	var row model.UserProgress
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.UserProgress{
				UserID:      userID,
				CourseID:    courseID,
				Progress:    progress,
				Completed:   progress == 100,
				LastUpdated: time.Now().UTC(),
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		row.Progress = progress
		row.Completed = progress == 100
		row.LastUpdated = time.Now().UTC()
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ------------------------------------------------------------ Completions

func (s *GORMStore) GetChallengeCompletion(userID, challengeID uint) (*model.ChallengeCompletion, error) {
	var completion model.ChallengeCompletion
	err := s.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&completion).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &completion, nil
}

// CompleteChallenge records the completion and awards XP as one database
// transaction: no reader observes XP updated without the completion row,
// or vice versa. Re-completing is idempotent: the existing record is
// returned and no XP is re-awarded. The awarded score is clamped to
// [0, xpReward] so clients cannot inflate rewards.
func (s *GORMStore) CompleteChallenge(userID, challengeID uint, score *int) (*CompletionResult, error) {
	var result CompletionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var challenge model.Challenge
		if err := tx.First(&challenge, challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return mapNotFound(err)
		}

		var existing model.ChallengeCompletion
		err := tx.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&existing).Error
		if err == nil {
			result = CompletionResult{
				Completion:       existing,
				XPPoints:         user.XPPoints,
				Level:            user.Level,
				AlreadyCompleted: true,
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		awarded := clampScore(score, challenge.XPReward)
		completion := model.ChallengeCompletion{
			UserID:      userID,
			ChallengeID: challengeID,
			Completed:   true,
			Score:       awarded,
			CompletedAt: time.Now().UTC(),
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		newXP := user.XPPoints + awarded
		updates := map[string]interface{}{"xp_points": newXP}
		if newLevel := model.LevelForXP(newXP); newLevel > user.Level {
			user.Level = newLevel
			updates["level"] = newLevel
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}

		result = CompletionResult{
			Completion: completion,
			XPPoints:   newXP,
			Level:      user.Level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ----------------------------------------------------------- Achievements

func (s *GORMStore) CreateAchievement(achievement *model.Achievement) error {
	return s.db.Create(achievement).Error
}

func (s *GORMStore) GetAllAchievements() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := s.db.Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (s *GORMStore) GetUserAchievements(userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := s.db.
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Order("user_achievements.earned_at ASC").
		Find(&achievements).Error
	return achievements, err
}

// AwardAchievement is an idempotent upsert: awarding an already-held
// achievement returns the existing record untouched.
func (s *GORMStore) AwardAchievement(userID, achievementID uint) (*model.UserAchievement, error) {
	var award model.UserAchievement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&award).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var achievement model.Achievement
		if err := tx.First(&achievement, achievementID).Error; err != nil {
			return mapNotFound(err)
		}

		award = model.UserAchievement{
			UserID:        userID,
			AchievementID: achievementID,
			EarnedAt:      time.Now().UTC(),
		}
		return tx.Create(&award).Error
	})
	if err != nil {
		return nil, err
	}
	return &award, nil
}

// ------------------------------------------------------------ Maintenance

// RecountCourseChallenges refreshes each course's total_challenges from
// the challenges table.
func (s *GORMStore) RecountCourseChallenges() error {
	return s.db.Exec(`
		UPDATE courses SET total_challenges = (
			SELECT COUNT(*) FROM challenges WHERE challenges.course_id = courses.id
		)`).Error
}

func (s *GORMStore) RecordCronRun(entry *model.CronJobLog) error {
	return s.db.Create(entry).Error
}

func (s *GORMStore) FinishCronRun(id uint, status, message string) error {
	now := time.Now().UTC()
	return s.db.Model(&model.CronJobLog{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"message":     message,
		"finished_at": &now,
	}).Error
}

func (s *GORMStore) PruneCronLogs(before time.Time) (int64, error) {
	res := s.db.Where("started_at < ?", before).Delete(&model.CronJobLog{})
	return res.RowsAffected, res.Error
}

// ---------------------------------------------------------------- helpers

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func clampScore(score *int, xpReward int) int {
	if score == nil {
		return xpReward
	}
	s := *score
	if s < 0 {
		return 0
	}
	if s > xpReward {
		return xpReward
	}
	return s
}
