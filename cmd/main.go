package main

import (
	"context"
	"time"

	"ngmc-chatbot-backend/internal/api"
	"ngmc-chatbot-backend/internal/api/routes"
	"ngmc-chatbot-backend/internal/bot"
	"ngmc-chatbot-backend/internal/cache"
	"ngmc-chatbot-backend/internal/catalog"
	"ngmc-chatbot-backend/internal/config"
	"ngmc-chatbot-backend/internal/libraries"
	"ngmc-chatbot-backend/internal/logging"
	"ngmc-chatbot-backend/internal/repo"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		lg := logging.L()
		lg.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		lg := logging.L()
		lg.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:       cfg.LogLevel,
		Pretty:      cfg.LogPretty,
		ServiceName: "ngmc-chatbot",
	})

	// Connect to database
	if err := config.ConnectDB(cfg.DBURL); err != nil {
		lg := logging.L()
		lg.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer config.CloseDB()

	// Run migrations
	if err := config.MigrateAllModels(); err != nil {
		lg := logging.L()
		lg.Fatal().Err(err).Msg("failed to migrate database")
	}
	lg := logging.L()
	lg.Info().Msg("database connected")

	staff, err := catalog.LoadStaffDirectory(cfg.StaffFile)
	if err != nil {
		lg := logging.L()
		lg.Fatal().Err(err).Str("file", cfg.StaffFile).Msg("failed to load staff directory")
	}
	if staff.Empty() {
		lg := logging.L()
		lg.Warn().Str("file", cfg.StaffFile).Msg("staff directory is empty")
	}

	resourceRepo := repo.NewResourceRepository(config.DB)
	harvester := catalog.NewHarvester(resourceRepo, nil)

	// Harvest the link catalog in the background so a slow college site
	// never blocks startup. The previous catalog keeps serving meanwhile.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		counts, err := harvester.Refresh(ctx)
		if err != nil {
			lg := logging.L()
			lg.Warn().Err(err).Msg("initial catalog harvest failed")
			return
		}
		lg := logging.L()
		lg.Info().Interface("counts", counts).Msg("catalog harvested")
	}()

	var chats cache.ChatListCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisChatCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			lg := logging.L()
			lg.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		chats = redisCache
		lg := logging.L()
		lg.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	}

	responder := bot.NewEngine(resourceRepo, staff, bot.WithDelay(
		time.Duration(cfg.BotMinDelayMs)*time.Millisecond,
		time.Duration(cfg.BotMaxDelayMs)*time.Millisecond,
	))

	hub := libraries.NewHub()
	go hub.Run()

	// Create and configure Fiber app
	app := api.NewServer()

	// Register routes
	routes.Register(app, routes.Deps{
		Cfg:       cfg,
		Responder: responder,
		Chats:     chats,
		Harvester: harvester,
		Hub:       hub,
	})

	// Start server
	if err := api.StartServer(app, cfg.Port); err != nil {
		lg := logging.L()
		lg.Fatal().Err(err).Msg("failed to start server")
	}
}
