package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

func NewMongoClient(config *MongoConfig) (*Client, error) {
	return NewClient(config)
}

var Module = fx.Options(
	fx.Provide(NewMongoClient),
	fx.Provide(NewCollectionManager),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client, collections *CollectionManager) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !client.Available() {
				fmt.Printf("[MONGODB] ⚠️  Archive disabled - sweep reports will only be logged\n")
				return nil
			}

			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.Ping(timeoutCtx); err != nil {
				fmt.Printf("[MONGODB] ⚠️  MongoDB unavailable - continuing without archive: %v\n", err)
				return nil
			}

			if err := collections.EnsureSweepReportCollection(timeoutCtx); err != nil {
				fmt.Printf("[MONGODB] ⚠️  Failed to ensure archive indexes: %v\n", err)
				return nil
			}

			fmt.Printf("[MONGODB] ✅ Sweep report archive ready\n")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close(ctx)
		},
	})
}
