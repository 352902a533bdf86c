package container

import (
	"poolpay/internal/config"
	"poolpay/internal/repository"
	"poolpay/internal/service"
	"poolpay/pkg/database"
	"poolpay/pkg/logger"
	"poolpay/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		Participants: repository.NewParticipantRepository(db),
		Teams:        repository.NewTeamRepository(db),
		Takes:        repository.NewTakeRepository(db),
		Payroll:      repository.NewPayrollRepository(db),
		Paydays:      repository.NewPaydayRepository(db),
	}

	cache := service.NewTakesCache(redisClient, log)
	services := &service.Services{
		Takes: service.NewTakesService(repos, cache, log, cfg.BlockUnreviewedUsers),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
	}, nil
}

// GetTakesService returns the takes service
func (c *Container) GetTakesService() service.TakesService {
	return c.Services.Takes
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
