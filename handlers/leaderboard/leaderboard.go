package leaderboard

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/model"
	"github.com/eduventure/eduventure-api/utils/cache"
	"github.com/eduventure/eduventure-api/utils/response"
)

// LeaderboardHandler serves the public XP ranking.
type LeaderboardHandler struct {
	store database.Storage
	cache *cache.RedisCache
}

// NewLeaderboardHandler creates a new leaderboard handler. The cache is
// optional; without it every request hits the store.
func NewLeaderboardHandler(store database.Storage, redisCache *cache.RedisCache) *LeaderboardHandler {
	return &LeaderboardHandler{
		store: store,
		cache: redisCache,
	}
}

// Get handles GET /api/leaderboard?limit=N. Only public user fields go
// over the wire.
func (h *LeaderboardHandler) Get(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(database.DefaultLeaderboardLimit)))
	if err != nil || limit < 1 {
		limit = database.DefaultLeaderboardLimit
	}

	// The refresh job keeps the default ranking warm.
	if h.cache != nil && limit == database.DefaultLeaderboardLimit {
		var cached []model.PublicUser
		if err := h.cache.GetJSON(c.Context(), cache.LeaderboardKey, &cached); err == nil {
			return response.Success(c, cached)
		}
	}

	users, err := h.store.GetLeaderboard(limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch leaderboard")
	}

	entries := make([]model.PublicUser, 0, len(users))
	for i := range users {
		entries = append(entries, users[i].Public())
	}

	if h.cache != nil && limit == database.DefaultLeaderboardLimit {
		_ = h.cache.SetJSON(c.Context(), cache.LeaderboardKey, entries, cache.LeaderboardTTL)
	}

	return response.Success(c, entries)
}
