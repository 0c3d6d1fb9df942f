package compliance

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/modules/compliance/controllers"
	"carelink-compliance-core/internal/modules/compliance/services"
)

// Module groups all providers of the compliance domain
var Module = fx.Options(
	// Stores (query structs used directly by services)
	fx.Provide(services.NewProviderStoreService),
	fx.Provide(services.NewDocumentStoreService),

	// Notification delivery port; swap for a real transport at deploy time
	fx.Provide(func() services.Mailer { return services.NewConsoleMailer() }),

	// Services
	fx.Provide(services.NewNotificationService),
	fx.Provide(services.NewSweepLeaseService),
	fx.Provide(services.NewSweepReportService),
	fx.Provide(services.NewExpirySweepService),
	fx.Provide(services.NewSweepSchedulerService),

	// Controllers (bound through their consumer-side interfaces)
	fx.Provide(func(s *services.ExpirySweepService) controllers.SweepEngine { return s }),
	fx.Provide(func(s *services.SweepReportService) controllers.ReportReader { return s }),
	fx.Provide(controllers.NewComplianceController),

	// Routes and scheduler lifecycle
	fx.Invoke(RegisterComplianceRoutes),
	fx.Invoke(RegisterSweepScheduler),
)

// RegisterComplianceRoutes wires the operational compliance endpoints
func RegisterComplianceRoutes(
	r *gin.Engine,
	complianceController *controllers.ComplianceController,
) {
	complianceAPI := r.Group("/api/v1/compliance")
	{
		complianceAPI.POST("/sweep/run", complianceController.RunSweep)
		complianceAPI.GET("/sweep/last", complianceController.LastReport)
		complianceAPI.GET("/sweep/history", complianceController.SweepHistory)
		complianceAPI.GET("/expiring-soon", complianceController.ExpiringSoon)
	}
}

// RegisterSweepScheduler hooks the daily scheduler into the Fx lifecycle
func RegisterSweepScheduler(
	lc fx.Lifecycle,
	scheduler *services.SweepSchedulerService,
	cfg *config.Config,
) {
	if !cfg.Sweep.Enabled {
		fmt.Printf("[SCHEDULER] ⚠️  sweep scheduling disabled by configuration\n")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			fmt.Printf("[SCHEDULER] ✅ daily sweep scheduled at %02d:%02d\n",
				cfg.Sweep.HourOfDay, cfg.Sweep.MinuteOfHour)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
