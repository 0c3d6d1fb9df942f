package database

import (
	"go.uber.org/fx"

	"carelink-compliance-core/internal/infrastructure/database/mongodb"
	"carelink-compliance-core/internal/infrastructure/database/postgres"
	"carelink-compliance-core/internal/infrastructure/database/redis"
)

var Module = fx.Options(
	postgres.Module,
	redis.Module,
	mongodb.Module,
)
