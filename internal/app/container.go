package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/config"
	"github.com/azhar1598/xplore-be/internal/server"
	"github.com/azhar1598/xplore-be/internal/service/ai"
	"github.com/azhar1598/xplore-be/internal/service/business"
	"github.com/azhar1598/xplore-be/internal/service/cache"
	"github.com/azhar1598/xplore-be/internal/service/database"
	"github.com/azhar1598/xplore-be/internal/service/history"
	"github.com/azhar1598/xplore-be/internal/service/insights"
	"github.com/azhar1598/xplore-be/internal/service/pexels"
	"github.com/azhar1598/xplore-be/internal/service/youtube"
)

// Container bundles the assembled services behind the HTTP server.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Server      *server.Server
	Synthesizer *insights.Synthesizer
	Business    *business.Service

	closers []func()
}

// Close releases infrastructure in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles all infrastructure services. Redis is optional at startup:
// when it cannot be reached the synthesizer runs with every lookup a miss until
// the client reconnects. Postgres and the text provider are required.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache and database
	cacheCfg := cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	cacheSvc, cacheErr := cache.NewCacheService(cacheCfg, logger)
	if cacheErr != nil {
		logger.Warn("Redis unavailable, starting with cache degraded", zap.Error(cacheErr))
		cacheSvc = cache.NewCacheServiceWithClient(cache.NewClient(cacheCfg), logger)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(cfg.Postgres.DSN(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	// Providers
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.Model,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	textProvider := ai.NewInsightGenerator(modelManager, logger)

	var video insights.VideoSearcher
	if cfg.YouTube.APIKey != "" {
		ys, err := youtube.NewService(ctx, cfg.YouTube.APIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create youtube service: %w", err)
		}
		video = ys
	} else {
		logger.Warn("YOUTUBE_API_KEY not set, video links disabled")
	}

	var image insights.ImageSearcher
	if cfg.Pexels.APIKey != "" {
		image = pexels.NewClient(cfg.Pexels.APIKey, cfg.Pexels.BaseURL, nil, logger)
	} else {
		logger.Warn("PEXELS_API_KEY not set, thumbnails disabled")
	}

	// Domain services
	synth := insights.NewSynthesizer(cacheSvc, textProvider, video, image, insights.Options{
		TextTimeout:  cfg.Insights.TextTimeout,
		VideoTimeout: cfg.Insights.VideoTimeout,
		ImageTimeout: cfg.Insights.ImageTimeout,
	}, logger)

	repo := history.NewRepository(postgresSvc.GetDB(), logger)
	businessSvc := business.NewService(synth, repo, logger)

	// HTTP
	health := server.NewHealthHandler(map[string]server.HealthCheck{
		"redis":    cacheSvc.Ping,
		"postgres": postgresSvc.Ping,
	}, modelManager.CircuitStatus)
	srv := server.New(cfg.Server, server.NewInsightHandler(synth, businessSvc, logger), health, logger)

	logger.Info("Application services assembled",
		zap.Bool("cache_degraded", cacheErr != nil),
		zap.Bool("video_enabled", video != nil),
		zap.Bool("image_enabled", image != nil),
		zap.Bool("text_fallback", cfg.OpenAI.EnableFallback && cfg.OpenAI.APIKey != ""),
	)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Server:      srv,
		Synthesizer: synth,
		Business:    businessSvc,
		closers:     closers,
	}, nil
}
