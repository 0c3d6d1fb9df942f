package app

import (
	"carelink-compliance-core/internal/app/bootstrap"
	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/infrastructure/database"
	"carelink-compliance-core/internal/infrastructure/database/redis"
	"carelink-compliance-core/internal/infrastructure/logger"
	"carelink-compliance-core/internal/modules/compliance"

	"go.uber.org/fx"
)

// NewRedisKeyGenerator builds the environment-scoped Redis key generator
func NewRedisKeyGenerator(cfg *config.Config) *redis.KeyGenerator {
	return redis.NewKeyGenerator(cfg.Environment)
}

var AppModule = fx.Options(
	// Configuration (must come first)
	fx.Provide(config.NewConfig),
	fx.Provide(config.NewDatabaseConfigProvider),
	fx.Provide(config.NewPostgresConfig),
	fx.Provide(config.NewRedisConfig),
	fx.Provide(config.NewMongoConfig),

	// Shared utilities (after config, before infrastructure)
	fx.Provide(NewRedisKeyGenerator),

	// Infrastructure
	database.Module,
	logger.Module,

	// Business modules
	compliance.Module,

	// Bootstrap system providers
	fx.Provide(bootstrap.NewBootstrapExtensionManager),
	fx.Provide(bootstrap.NewBootstrapSchemaManager),
	fx.Provide(bootstrap.NewBootstrapLeaseManager),
	fx.Provide(bootstrap.NewBootstrapSystem),

	// Router
	fx.Provide(NewRouter),

	// Application
	fx.Provide(NewApplication),

	// Lifecycle management
	fx.Invoke(bootstrap.RegisterBootstrapLifecycle),
	fx.Invoke((*Application).Start),
)
