package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/config"
	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/handlers"
	achievement_handlers "github.com/eduventure/eduventure-api/handlers/achievement"
	auth_handlers "github.com/eduventure/eduventure-api/handlers/auth"
	challenge_handlers "github.com/eduventure/eduventure-api/handlers/challenge"
	course_handlers "github.com/eduventure/eduventure-api/handlers/course"
	leaderboard_handlers "github.com/eduventure/eduventure-api/handlers/leaderboard"
	profile_handlers "github.com/eduventure/eduventure-api/handlers/profile"
	progress_handlers "github.com/eduventure/eduventure-api/handlers/progress"
	"github.com/eduventure/eduventure-api/services/spaces"
	"github.com/eduventure/eduventure-api/utils/auth"
	"github.com/eduventure/eduventure-api/utils/cache"
	"github.com/eduventure/eduventure-api/utils/middleware"
)

// Deps carries the shared infrastructure handlers need. Cache and
// Spaces are optional; routes degrade gracefully without them.
type Deps struct {
	Store  database.Storage
	Cache  *cache.RedisCache
	Spaces *spaces.Client
	Env    *config.EnviornmentVariable
}

func SetupRoutes(app *fiber.App, deps Deps) {
	store := deps.Store

	issuer := deps.Env.SESSION_ISSUER
	if issuer == "" {
		issuer = "eduventure-api"
	}

	var sessionStore auth.SessionStore
	if deps.Cache != nil {
		sessionStore = auth.NewRedisSessionStore(deps.Cache)
	} else {
		log.Println("Redis not configured, sessions are in-process only")
		sessionStore = auth.NewMemorySessionStore()
	}

	sessions := auth.NewSessionManager(auth.SessionConfig{
		Secret: deps.Env.SESSION_SECRET,
		TTL:    auth.DefaultSessionTTL,
		Issuer: issuer,
	}, sessionStore)

	// Brute force protection needs Redis counters.
	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Cache)
	}

	authMiddleware := middleware.NewAuthMiddleware(sessions, store)

	authHandler := auth_handlers.NewAuthHandler(store, sessions, bruteForceProtection)
	profileHandler := profile_handlers.NewProfileHandler(store, deps.Spaces)
	courseHandler := course_handlers.NewCourseHandler(store)
	challengeHandler := challenge_handlers.NewChallengeHandler(store)
	progressHandler := progress_handlers.NewProgressHandler(store)
	achievementHandler := achievement_handlers.NewAchievementHandler(store)
	leaderboardHandler := leaderboard_handlers.NewLeaderboardHandler(store, deps.Cache)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	api := app.Group("/api")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Put("/", profileHandler.Update)
	profileGroup.Post("/avatar", profileHandler.UploadAvatar)

	// Course catalog (public)
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/featured", courseHandler.ListFeaturedCourses)
	courses.Get("/:id", courseHandler.GetCourse)

	// Challenge roadmap (protected)
	courses.Get("/:courseId/challenges", authMiddleware.Required(), challengeHandler.ListByCourse)

	challenges := api.Group("/challenges", authMiddleware.Required())
	challenges.Get("/:id", challengeHandler.GetChallenge)
	challenges.Post("/:id/complete", challengeHandler.Complete)

	// Progress (protected)
	progressGroup := api.Group("/progress", authMiddleware.Required())
	progressGroup.Get("/", progressHandler.List)
	progressGroup.Post("/", progressHandler.Upsert)
	progressGroup.Get("/:courseId", progressHandler.GetByCourse)

	// Achievements (protected)
	achievements := api.Group("/achievements", authMiddleware.Required())
	achievements.Get("/", achievementHandler.ListEarned)
	achievements.Get("/all", achievementHandler.ListAll)

	// Leaderboard (public)
	api.Get("/leaderboard", leaderboardHandler.Get)
}
