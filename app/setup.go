package app

import (
	"fmt"
	"log"

	"github.com/eduventure/eduventure-api/api"
	"github.com/eduventure/eduventure-api/config"
	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/router"
	"github.com/eduventure/eduventure-api/services/cron"
	"github.com/eduventure/eduventure-api/services/spaces"
	"github.com/eduventure/eduventure-api/utils/cache"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Pick the storage backend. DB_DISABLED runs everything against the
	// in-memory store, useful for demos and local hacking.
	var store database.Storage
	if getEnv.DB_DISABLED {
		log.Println("DB_DISABLED is set, using in-memory storage")
		store = database.StartMem()
	} else {
		gormStore, err := database.StartGORM()
		if err != nil {
			print("Check whether the Postgres is running or not\n")
			print("If not running, run the following command:\n")
			print("  make docker-up   (for Docker setup)\n")
			print("  make db-up       (for local PostgreSQL)\n")
			return err
		}
		store = gormStore
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Seed the reference dataset when asked to.
	if getEnv.SEED_ON_START {
		if err := database.RunSeeds(store); err != nil {
			log.Printf("Warning: seeding failed: %v", err)
		}
	}

	// Redis backs sessions, the leaderboard cache, and brute force
	// counters. The app still works without it.
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Falling back to in-process sessions.", err)
			redisCache = nil
		}
	}

	// Spaces client for avatar uploads.
	var spacesClient *spaces.Client
	if getEnv.DO_SPACES_BUCKET != "" {
		spacesClient, err = spaces.NewClient(spaces.Config{
			AccessKey: getEnv.DO_SPACES_KEY,
			SecretKey: getEnv.DO_SPACES_SECRET,
			Bucket:    getEnv.DO_SPACES_BUCKET,
			Region:    getEnv.DO_SPACES_REGION,
			Endpoint:  getEnv.DO_SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to create Spaces client: %v. Avatar uploads disabled.", err)
			spacesClient = nil
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store, redisCache)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, router.Deps{
		Store:  store,
		Cache:  redisCache,
		Spaces: spacesClient,
		Env:    getEnv,
	})

	// Get the PORT & Start the Server
	return server.Run()

}
