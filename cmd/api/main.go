package main

import (
	"context"
	"log"

	"carelink-compliance-core/internal/app"

	"go.uber.org/fx"
)

func main() {

	fx.New(
		app.AppModule,
		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Println("CareLink Compliance Core starting...")
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Println("CareLink Compliance Core stopping...")
					return nil
				},
			})
		}),
	).Run()
}
