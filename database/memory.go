package database

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/eduventure/eduventure-api/content"
	"github.com/eduventure/eduventure-api/model"
)

// MemStore is an in-process Storage implementation backed by maps. It is
// used by the test suite and when DB_DISABLED=true. A single mutex
// serializes all operations, which makes the multi-step CompleteChallenge
// sequence atomic with respect to concurrent requests.
type MemStore struct {
	mu sync.Mutex

	users        map[uint]*model.User
	userOrder    []uint // insertion order, for stable leaderboard ties
	courses      map[uint]*model.Course
	courseOrder  []uint
	challenges   map[uint]*model.Challenge
	progress     map[string]*model.UserProgress        // key: userID-courseID
	completions  map[string]*model.ChallengeCompletion // key: userID-challengeID
	achievements map[uint]*model.Achievement
	achOrder     []uint
	awards       map[string]*model.UserAchievement // key: userID-achievementID
	awardOrder   []string
	cronLogs     map[uint]*model.CronJobLog

	nextUserID       uint
	nextCourseID     uint
	nextChallengeID  uint
	nextProgressID   uint
	nextCompletionID uint
	nextAchID        uint
	nextAwardID      uint
	nextCronLogID    uint
}

// StartMem creates an empty in-memory store.
func StartMem() *MemStore {
	return &MemStore{
		users:        make(map[uint]*model.User),
		courses:      make(map[uint]*model.Course),
		challenges:   make(map[uint]*model.Challenge),
		progress:     make(map[string]*model.UserProgress),
		completions:  make(map[string]*model.ChallengeCompletion),
		achievements: make(map[uint]*model.Achievement),
		awards:       make(map[string]*model.UserAchievement),
		cronLogs:     make(map[uint]*model.CronJobLog),
	}
}

func (s *MemStore) Init() error {
	log.Println("Using in-memory store (no persistence).")
	return nil
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) HealthCheck() error { return nil }

func pairKey(a, b uint) string {
	return fmt.Sprintf("%d-%d", a, b)
}

// ---------------------------------------------------------------- Users

func (s *MemStore) GetUser(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemStore) GetUserByUsername(username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.userOrder {
		if s.users[id].Username == username {
			u := *s.users[id]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) CreateUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.userOrder {
		if s.users[id].Username == user.Username {
			return ErrDuplicateUsername
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.XPPoints < 0 {
		user.XPPoints = 0
	}
	user.Level = model.LevelForXP(user.XPPoints)
	user.CreatedAt = time.Now().UTC()

	stored := *user
	s.users[user.ID] = &stored
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *MemStore) UpdateUserProfile(id uint, upd ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
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
	u := *user
	return &u, nil
}

func (s *MemStore) GetLeaderboard(limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, *s.users[id])
	}
	// Stable sort keeps insertion order for equal XP.
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].XPPoints > users[j].XPPoints
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// ---------------------------------------------------------------- Courses

func (s *MemStore) GetCourse(id uint) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *course
	return &c, nil
}

func (s *MemStore) GetAllCourses() ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	courses := make([]model.Course, 0, len(s.courseOrder))
	for _, id := range s.courseOrder {
		courses = append(courses, *s.courses[id])
	}
	return courses, nil
}

func (s *MemStore) GetFeaturedCourses() ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var courses []model.Course
	for _, id := range s.courseOrder {
		if s.courses[id].Featured {
			courses = append(courses, *s.courses[id])
		}
	}
	return courses, nil
}

func (s *MemStore) CreateCourse(course *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCourseID++
	course.ID = s.nextCourseID
	stored := *course
	s.courses[course.ID] = &stored
	s.courseOrder = append(s.courseOrder, course.ID)
	return nil
}

// ------------------------------------------------------------- Challenges

func (s *MemStore) GetChallenge(id uint) (*model.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *challenge
	return &c, nil
}

func (s *MemStore) GetChallengesByCourse(courseID uint) ([]model.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var challenges []model.Challenge
	for _, challenge := range s.challenges {
		if challenge.CourseID == courseID {
			challenges = append(challenges, *challenge)
		}
	}
	sort.Slice(challenges, func(i, j int) bool {
		if challenges[i].OrderIndex != challenges[j].OrderIndex {
			return challenges[i].OrderIndex < challenges[j].OrderIndex
		}
		return challenges[i].ID < challenges[j].ID
	})
	return challenges, nil
}

func (s *MemStore) CreateChallenge(challenge *model.Challenge) error {
	if !challenge.Type.Valid() {
		return fmt.Errorf("%w: %q", content.ErrUnknownType, challenge.Type)
	}
	if err := content.Validate(challenge.Type, challenge.Content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextChallengeID++
	challenge.ID = s.nextChallengeID
	stored := *challenge
	s.challenges[challenge.ID] = &stored
	return nil
}

// --------------------------------------------------------------- Progress

func (s *MemStore) GetUserProgress(userID uint) ([]model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []model.UserProgress
	for _, p := range s.progress {
		if p.UserID == userID {
			rows = append(rows, *p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (s *MemStore) GetUserCourseProgress(userID, courseID uint) (*model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.progress[pairKey(userID, courseID)]
	if !ok {
		return nil, ErrNotFound
	}
	p := *row
	return &p, nil
}

func (s *MemStore) UpsertProgress(userID, courseID uint, progress int) (*model.UserProgress, error) {
	progress = model.ClampProgress(progress)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userID, courseID)
	now := time.Now().UTC()

	if row, ok := s.progress[key]; ok {
		// lastUpdated must strictly increase even on sub-nanosecond
		// back-to-back writes.
		if !now.After(row.LastUpdated) {
			now = row.LastUpdated.Add(time.Nanosecond)
		}
		row.Progress = progress
		row.Completed = progress == 100
		row.LastUpdated = now
		p := *row
		return &p, nil
	}

	s.nextProgressID++
	row := &model.UserProgress{
		ID:          s.nextProgressID,
		UserID:      userID,
		CourseID:    courseID,
		Progress:    progress,
		Completed:   progress == 100,
		LastUpdated: now,
	}
	s.progress[key] = row
	p := *row
	return &p, nil
}

// ------------------------------------------------------------ Completions

func (s *MemStore) GetChallengeCompletion(userID, challengeID uint) (*model.ChallengeCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completion, ok := s.completions[pairKey(userID, challengeID)]
	if !ok {
		return nil, ErrNotFound
	}
	c := *completion
	return &c, nil
}

// CompleteChallenge runs the whole lookup-record-award-relevel sequence
// under the store mutex, so its effects are observed all together or not
// at all. Idempotent on re-completion.
func (s *MemStore) CompleteChallenge(userID, challengeID uint, score *int) (*CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[challengeID]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	key := pairKey(userID, challengeID)
	if existing, ok := s.completions[key]; ok {
		return &CompletionResult{
			Completion:       *existing,
			XPPoints:         user.XPPoints,
			Level:            user.Level,
			AlreadyCompleted: true,
		}, nil
	}

	awarded := clampScore(score, challenge.XPReward)

	s.nextCompletionID++
	completion := &model.ChallengeCompletion{
		ID:          s.nextCompletionID,
		UserID:      userID,
		ChallengeID: challengeID,
		Completed:   true,
		Score:       awarded,
		CompletedAt: time.Now().UTC(),
	}
	s.completions[key] = completion

	user.XPPoints += awarded
	if newLevel := model.LevelForXP(user.XPPoints); newLevel > user.Level {
		user.Level = newLevel
	}

	return &CompletionResult{
		Completion: *completion,
		XPPoints:   user.XPPoints,
		Level:      user.Level,
	}, nil
}

// ----------------------------------------------------------- Achievements

func (s *MemStore) GetAllAchievements() ([]model.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	achievements := make([]model.Achievement, 0, len(s.achOrder))
	for _, id := range s.achOrder {
		achievements = append(achievements, *s.achievements[id])
	}
	return achievements, nil
}

func (s *MemStore) GetUserAchievements(userID uint) ([]model.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var achievements []model.Achievement
	for _, key := range s.awardOrder {
		award := s.awards[key]
		if award.UserID != userID {
			continue
		}
		if a, ok := s.achievements[award.AchievementID]; ok {
			achievements = append(achievements, *a)
		}
	}
	return achievements, nil
}

// CreateAchievement seeds a catalog entry.
func (s *MemStore) CreateAchievement(achievement *model.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAchID++
	achievement.ID = s.nextAchID
	stored := *achievement
	s.achievements[achievement.ID] = &stored
	s.achOrder = append(s.achOrder, achievement.ID)
	return nil
}

func (s *MemStore) AwardAchievement(userID, achievementID uint) (*model.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userID, achievementID)
	if existing, ok := s.awards[key]; ok {
		a := *existing
		return &a, nil
	}

	if _, ok := s.achievements[achievementID]; !ok {
		return nil, ErrNotFound
	}

	s.nextAwardID++
	award := &model.UserAchievement{
		ID:            s.nextAwardID,
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now().UTC(),
	}
	s.awards[key] = award
	s.awardOrder = append(s.awardOrder, key)
	a := *award
	return &a, nil
}

// ------------------------------------------------------------ Maintenance

func (s *MemStore) RecountCourseChallenges() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[uint]int)
	for _, challenge := range s.challenges {
		counts[challenge.CourseID]++
	}
	for id, course := range s.courses {
		course.TotalChallenges = counts[id]
	}
	return nil
}

func (s *MemStore) RecordCronRun(entry *model.CronJobLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCronLogID++
	entry.ID = s.nextCronLogID
	stored := *entry
	s.cronLogs[entry.ID] = &stored
	return nil
}

func (s *MemStore) FinishCronRun(id uint, status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cronLogs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	entry.Status = status
	entry.Message = message
	entry.FinishedAt = &now
	return nil
}

func (s *MemStore) PruneCronLogs(before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for id, entry := range s.cronLogs {
		if entry.StartedAt.Before(before) {
			delete(s.cronLogs, id)
			pruned++
		}
	}
	return pruned, nil
}
