package database

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"github.com/eduventure/eduventure-api/model"
	"github.com/eduventure/eduventure-api/utils/auth"
)

// Seeder loads the reference dataset: demo users, sample courses with
// their challenge roadmaps, and the achievement catalog. Seeding is
// idempotent; each step is skipped when rows already exist.
type Seeder struct {
	store Storage
}

// NewSeeder creates a new seeder instance.
func NewSeeder(store Storage) *Seeder {
	return &Seeder{store: store}
}

// RunSeeds seeds everything against the given store.
func RunSeeds(store Storage) error {
	return NewSeeder(store).SeedAll()
}

// SeedAll runs all seed functions in dependency order.
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}
	if err := s.SeedChallenges(); err != nil {
		return fmt.Errorf("failed to seed challenges: %w", err)
	}
	if err := s.SeedAchievements(); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}
	if err := s.SeedDemoActivity(); err != nil {
		return fmt.Errorf("failed to seed demo activity: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedUsers creates the demo accounts. Passwords are bcrypt-hashed.
func (s *Seeder) SeedUsers() error {
	leaders, err := s.store.GetLeaderboard(1)
	if err != nil {
		return err
	}
	if len(leaders) > 0 {
		log.Println("Users already exist, skipping...")
		return nil
	}

	seedUsers := []struct {
		username string
		password string
		display  string
		bio      string
		xp       int
	}{
		{"MasterCoder99", "password123", "MasterCoder99", "Coding enthusiast", 9542},
		{"PythonWizard", "password123", "PythonWizard", "Python lover", 8715},
		{"CodeNinja21", "password123", "CodeNinja21", "Silent but deadly coder", 7982},
		{"demo", "demo1234", "CodeWarrior", "Passionate programmer on a quest to master all coding languages. Currently focusing on Python and Javascript. Love solving algorithmic challenges!", 3200},
	}

	for _, su := range seedUsers {
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			return err
		}
		user := &model.User{
			Username:     su.username,
			PasswordHash: hash,
			DisplayName:  su.display,
			Bio:          su.bio,
			XPPoints:     su.xp,
		}
		if err := s.store.CreateUser(user); err != nil {
			return err
		}
	}

	log.Printf("Created %d demo users\n", len(seedUsers))
	return nil
}

// SeedCourses creates the sample course catalog.
func (s *Seeder) SeedCourses() error {
	existing, err := s.store.GetAllCourses()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Courses already exist, skipping...")
		return nil
	}

	courses := []model.Course{
		{
			Title:           "Python Basics",
			Description:     "Master the fundamentals of Python programming. Perfect for beginners!",
			ImageURL:        "https://images.unsplash.com/photo-1555949963-ff9fe0c870eb?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
			Difficulty:      model.DifficultyBeginner,
			Rating:          48,
			TotalChallenges: 5,
			Category:        "Programming",
			Featured:        true,
		},
		{
			Title:           "Data Structures",
			Description:     "Learn essential data structures to level up your coding skills.",
			ImageURL:        "https://images.unsplash.com/photo-1558494949-ef010cbdcc31?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
			Difficulty:      model.DifficultyAdvanced,
			Rating:          46,
			TotalChallenges: 8,
			Category:        "Computer Science",
			Featured:        true,
		},
		{
			Title:           "Web Development",
			Description:     "Build interactive websites and applications from scratch.",
			ImageURL:        "https://images.unsplash.com/photo-1551288049-bebda4e38f71?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
			Difficulty:      model.DifficultyIntermediate,
			Rating:          49,
			TotalChallenges: 10,
			Category:        "Web Development",
			Featured:        true,
			IsNew:           true,
		},
		{
			Title:           "Data Analysis",
			Description:     "Learn to analyze and visualize data with Python.",
			ImageURL:        "https://images.unsplash.com/photo-1551288049-bebda4e38f71?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
			Difficulty:      model.DifficultyIntermediate,
			Rating:          45,
			TotalChallenges: 7,
			Category:        "Data Science",
		},
	}

	for i := range courses {
		if err := s.store.CreateCourse(&courses[i]); err != nil {
			return err
		}
	}

	log.Printf("Created %d courses\n", len(courses))
	return nil
}

// SeedChallenges creates the Python Basics roadmap, one challenge of each
// type. Content goes through the interpreter's write-time validation.
func (s *Seeder) SeedChallenges() error {
	pythonBasics, err := s.findCourse("Python Basics")
	if err != nil {
		return err
	}
	if pythonBasics == nil {
		log.Println("Python Basics course missing, skipping challenge seed...")
		return nil
	}

	existing, err := s.store.GetChallengesByCourse(pythonBasics.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Challenges already exist, skipping...")
		return nil
	}

	challenges := []model.Challenge{
		{
			CourseID:    pythonBasics.ID,
			Title:       "Python Basics",
			Description: "Introduction to Python programming",
			Type:        model.ChallengeTypeVideo,
			Content: mustJSON(map[string]interface{}{
				"videoUrl": "https://example.com/python-intro",
				"questions": []map[string]interface{}{
					{
						"time":          10,
						"question":      "What does x = 5 do?",
						"options":       []string{"Stores 5 in x", "Compares x to 5", "Prints 5", "Creates a function named x"},
						"correctAnswer": 0,
					},
					{
						"time":          20,
						"question":      "Which of the following is a valid Python comment?",
						"options":       []string{"// Comment", "/* Comment */", "# Comment", "-- Comment"},
						"correctAnswer": 2,
					},
				},
			}),
			XPReward:   100,
			OrderIndex: 0,
		},
		{
			CourseID:    pythonBasics.ID,
			Title:       "MCQ Challenge",
			Description: "Test your knowledge with multiple choice questions",
			Type:        model.ChallengeTypeMCQ,
			Content: mustJSON(map[string]interface{}{
				"questions": []map[string]interface{}{
					{
						"question":      "Which of the following is NOT a valid Python data type?",
						"options":       []string{"Integer", "Float", "Character", "Boolean"},
						"correctAnswer": 2,
						"points":        5,
					},
					{
						"question":      "What will be the output of print(2**3)?",
						"options":       []string{"6", "8", "5", "Error"},
						"correctAnswer": 1,
						"points":        5,
					},
				},
			}),
			XPReward:   150,
			OrderIndex: 1,
		},
		{
			CourseID:    pythonBasics.ID,
			Title:       "Coding Challenge",
			Description: "Write and submit code to solve Python problems",
			Type:        model.ChallengeTypeCoding,
			Content: mustJSON(map[string]interface{}{
				"task":           "Write a Python function that prints \"Hello, World!\" to the console.",
				"starterCode":    "# Your task:\n# 1. Create a function named 'hello_world'\n# 2. Make it print \"Hello, World!\"\n# 3. Call the function\n\ndef hello_world():\n    # Your code here\n    \n# Call your function here",
				"expectedOutput": "Hello, World!",
				"points":         10,
			}),
			XPReward:   200,
			OrderIndex: 2,
		},
		{
			CourseID:    pythonBasics.ID,
			Title:       "Memory Maze",
			Description: "Complete the puzzle maze challenge",
			Type:        model.ChallengeTypeMaze,
			Content: mustJSON(map[string]interface{}{
				"gridSize": 5,
				"pairs": []map[string]string{
					{"text": "Python", "match": "Programming Language"},
					{"text": "List", "match": "Collection"},
					{"text": "Dictionary", "match": "Key-Value Pairs"},
					{"text": "Tuple", "match": "Immutable"},
					{"text": "Function", "match": "Reusable Code"},
					{"text": "Class", "match": "Blueprint"},
					{"text": "Variable", "match": "Store Data"},
					{"text": "Loop", "match": "Iteration"},
					{"text": "Condition", "match": "If-Else"},
					{"text": "Module", "match": "Import"},
					{"text": "Exception", "match": "Try-Except"},
					{"text": "Comment", "match": "# Symbol"},
				},
				"points": 10,
			}),
			XPReward:   250,
			OrderIndex: 3,
		},
		{
			CourseID:    pythonBasics.ID,
			Title:       "Career Quest",
			Description: "Interview preparation and career resources",
			Type:        model.ChallengeTypeCareer,
			Content: mustJSON(map[string]interface{}{
				"interviewQuestions": []map[string]string{
					{"question": "What is a variable in Python?", "answer": "A named location in memory used to store data that can be modified during program execution."},
					{"question": "Explain the difference between a list and tuple.", "answer": "Lists are mutable (can be changed) while tuples are immutable (cannot be changed after creation)."},
				},
				"resources": []map[string]string{
					{"title": "Python Developer Resume Template", "url": "https://example.com/python-resume"},
					{"title": "Common Python Interview Questions", "url": "https://example.com/python-interview"},
				},
				"points": 15,
			}),
			XPReward:   300,
			OrderIndex: 4,
		},
	}

	for i := range challenges {
		if err := s.store.CreateChallenge(&challenges[i]); err != nil {
			return err
		}
	}

	log.Printf("Created %d challenges for %q\n", len(challenges), pythonBasics.Title)
	return nil
}

// SeedAchievements creates the achievement catalog.
func (s *Seeder) SeedAchievements() error {
	existing, err := s.store.GetAllAchievements()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Achievements already exist, skipping...")
		return nil
	}

	achievements := []model.Achievement{
		{
			Title:       "First Quest",
			Description: "Complete your first course",
			IconName:    "trophy",
			Condition:   "complete_first_course",
		},
		{
			Title:       "Code Master",
			Description: "Complete 5 coding challenges",
			IconName:    "code",
			Condition:   "complete_5_coding_challenges",
		},
		{
			Title:       "Python Expert",
			Description: "Complete the Python Mastery Path",
			IconName:    "certificate",
			Condition:   "complete_python_course",
		},
	}

	for i := range achievements {
		if err := s.store.CreateAchievement(&achievements[i]); err != nil {
			return err
		}
	}

	log.Printf("Created %d achievements\n", len(achievements))
	return nil
}

// SeedDemoActivity gives the demo account some visible progress and
// earned achievements.
func (s *Seeder) SeedDemoActivity() error {
	demo, err := s.store.GetUserByUsername("demo")
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}

	progressByCourse := map[string]int{
		"Python Basics":   65,
		"Data Analysis":   30,
		"Web Development": 10,
	}
	for title, pct := range progressByCourse {
		course, err := s.findCourse(title)
		if err != nil {
			return err
		}
		if course == nil {
			continue
		}
		if _, err := s.store.UpsertProgress(demo.ID, course.ID, pct); err != nil {
			return err
		}
	}

	achievements, err := s.store.GetAllAchievements()
	if err != nil {
		return err
	}
	for i, a := range achievements {
		if i >= 2 {
			break
		}
		if _, err := s.store.AwardAchievement(demo.ID, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) findCourse(title string) (*model.Course, error) {
	courses, err := s.store.GetAllCourses()
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].Title == title {
			return &courses[i], nil
		}
	}
	return nil, nil
}

func mustJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(raw)
}
