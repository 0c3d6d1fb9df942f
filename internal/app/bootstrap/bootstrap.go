package bootstrap

import (
	"context"
	"fmt"
	"time"

	"carelink-compliance-core/internal/app/config"
	pgInfra "carelink-compliance-core/internal/infrastructure/database/postgres"
	redisInfra "carelink-compliance-core/internal/infrastructure/database/redis"

	"go.uber.org/fx"
)

// BootstrapSystem runs the startup checks before the HTTP server starts.
// Three sequential phases: PostgreSQL extensions, compliance schema, then
// stale sweep lease reclaim.
type BootstrapSystem struct {
	extensionManager *ExtensionManager
	schemaManager    *SchemaManager
	leaseManager     *LeaseManager
	config           *config.Config
	timeout          time.Duration
}

// BootstrapResult holds the outcome of a bootstrap run
type BootstrapResult struct {
	Success        bool          `json:"success"`
	TotalDuration  time.Duration `json:"total_duration"`
	PhasesExecuted []PhaseResult `json:"phases_executed"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// PhaseResult holds the outcome of a single bootstrap phase
type PhaseResult struct {
	Phase       string        `json:"phase"`
	Success     bool          `json:"success"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	Error       string        `json:"error,omitempty"`
}

func NewBootstrapSystem(
	extensionManager *ExtensionManager,
	schemaManager *SchemaManager,
	leaseManager *LeaseManager,
	config *config.Config,
) *BootstrapSystem {
	return &BootstrapSystem{
		extensionManager: extensionManager,
		schemaManager:    schemaManager,
		leaseManager:     leaseManager,
		config:           config,
		timeout:          2 * time.Minute,
	}
}

// Execute runs both bootstrap phases in order
func (bs *BootstrapSystem) Execute() (*BootstrapResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), bs.timeout)
	defer cancel()

	fmt.Printf("[BOOTSTRAP] Starting BootstrapSystem (timeout: %v)\n", bs.timeout)

	result := &BootstrapResult{
		Success:        true,
		PhasesExecuted: []PhaseResult{},
	}

	// Phase 0: PostgreSQL extensions
	phase0Result := bs.executePhase0(ctx)
	result.PhasesExecuted = append(result.PhasesExecuted, phase0Result)
	if !phase0Result.Success {
		result.Success = false
		result.ErrorMessage = fmt.Sprintf("Phase 0 failed: %s", phase0Result.Error)
		return bs.finalizeResult(result, startTime), fmt.Errorf("bootstrap failed at phase 0: %s", phase0Result.Error)
	}

	// Phase 1: Compliance schema verification
	phase1Result := bs.executePhase1(ctx)
	result.PhasesExecuted = append(result.PhasesExecuted, phase1Result)
	if !phase1Result.Success {
		result.Success = false
		result.ErrorMessage = fmt.Sprintf("Phase 1 failed: %s", phase1Result.Error)
		return bs.finalizeResult(result, startTime), fmt.Errorf("bootstrap failed at phase 1: %s", phase1Result.Error)
	}

	// Phase 2: Stale sweep lease reclaim
	phase2Result := bs.executePhase2(ctx)
	result.PhasesExecuted = append(result.PhasesExecuted, phase2Result)
	if !phase2Result.Success {
		result.Success = false
		result.ErrorMessage = fmt.Sprintf("Phase 2 failed: %s", phase2Result.Error)
		return bs.finalizeResult(result, startTime), fmt.Errorf("bootstrap failed at phase 2: %s", phase2Result.Error)
	}

	result = bs.finalizeResult(result, startTime)
	fmt.Printf("[BOOTSTRAP] ✅ BootstrapSystem completed in %v\n", result.TotalDuration)
	fmt.Printf("[BOOTSTRAP] 🎯 Application ready for HTTP server startup\n")

	return result, nil
}

// executePhase0 runs Phase 0: PostgreSQL extensions
func (bs *BootstrapSystem) executePhase0(ctx context.Context) PhaseResult {
	startTime := time.Now()
	phase := "Phase 0: PostgreSQL extensions"

	fmt.Printf("[BOOTSTRAP] 🔧 Starting %s\n", phase)

	err := bs.extensionManager.EnsureRequiredExtensions(ctx)
	duration := time.Since(startTime)

	if err != nil {
		fmt.Printf("[BOOTSTRAP] ❌ %s failed in %v: %v\n", phase, duration, err)
		return PhaseResult{
			Phase:       phase,
			Success:     false,
			Duration:    duration,
			Description: "Install uuid-ossp extension",
			Error:       err.Error(),
		}
	}

	fmt.Printf("[BOOTSTRAP] ✅ %s completed in %v\n", phase, duration)
	return PhaseResult{
		Phase:       phase,
		Success:     true,
		Duration:    duration,
		Description: "Required extensions installed",
	}
}

// executePhase1 runs Phase 1: compliance schema verification
func (bs *BootstrapSystem) executePhase1(ctx context.Context) PhaseResult {
	startTime := time.Now()
	phase := "Phase 1: Compliance schema"

	fmt.Printf("[BOOTSTRAP] 🗄️  Starting %s\n", phase)

	err := bs.schemaManager.VerifyComplianceSchema(ctx)
	duration := time.Since(startTime)

	if err != nil {
		fmt.Printf("[BOOTSTRAP] ❌ %s failed in %v: %v\n", phase, duration, err)
		return PhaseResult{
			Phase:       phase,
			Success:     false,
			Duration:    duration,
			Description: "Verify provider and document tables",
			Error:       err.Error(),
		}
	}

	fmt.Printf("[BOOTSTRAP] ✅ %s completed in %v\n", phase, duration)
	return PhaseResult{
		Phase:       phase,
		Success:     true,
		Duration:    duration,
		Description: "Provider and document tables present",
	}
}

// executePhase2 runs Phase 2: stale sweep lease reclaim
func (bs *BootstrapSystem) executePhase2(ctx context.Context) PhaseResult {
	startTime := time.Now()
	phase := "Phase 2: Sweep lease"

	fmt.Printf("[BOOTSTRAP] 🔒 Starting %s\n", phase)

	err := bs.leaseManager.ReclaimStaleLease(ctx)
	duration := time.Since(startTime)

	if err != nil {
		fmt.Printf("[BOOTSTRAP] ❌ %s failed in %v: %v\n", phase, duration, err)
		return PhaseResult{
			Phase:       phase,
			Success:     false,
			Duration:    duration,
			Description: "Reclaim stale sweep lease",
			Error:       err.Error(),
		}
	}

	fmt.Printf("[BOOTSTRAP] ✅ %s completed in %v\n", phase, duration)
	return PhaseResult{
		Phase:       phase,
		Success:     true,
		Duration:    duration,
		Description: "Sweep lease inspected",
	}
}

// finalizeResult stamps the total duration on the result
func (bs *BootstrapSystem) finalizeResult(result *BootstrapResult, startTime time.Time) *BootstrapResult {
	result.TotalDuration = time.Since(startTime)
	return result
}

// GetTimeout returns the configured timeout
func (bs *BootstrapSystem) GetTimeout() time.Duration {
	return bs.timeout
}

// SetTimeout overrides the timeout (useful for tests)
func (bs *BootstrapSystem) SetTimeout(timeout time.Duration) {
	bs.timeout = timeout
}

// Fx providers for the bootstrap system

func NewBootstrapExtensionManager(pgClient *pgInfra.Client, cfg *config.Config) *ExtensionManager {
	return NewExtensionManager(pgClient, cfg)
}

func NewBootstrapSchemaManager(pgClient *pgInfra.Client, cfg *config.Config) *SchemaManager {
	return NewSchemaManager(pgClient, cfg)
}

func NewBootstrapLeaseManager(redisClient *redisInfra.Client) *LeaseManager {
	return NewLeaseManager(redisClient)
}

// RegisterBootstrapLifecycle runs the bootstrap system before the HTTP server starts
func RegisterBootstrapLifecycle(
	lc fx.Lifecycle,
	bootstrap *BootstrapSystem,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			fmt.Printf("[LIFECYCLE] 🚀 Running BootstrapSystem BEFORE HTTP server\n")

			result, err := bootstrap.Execute()
			if err != nil {
				fmt.Printf("[LIFECYCLE] ❌ Bootstrap failed: %v\n", err)
				return fmt.Errorf("bootstrap system failed: %w", err)
			}

			fmt.Printf("[LIFECYCLE] ✅ Bootstrap completed in %v\n", result.TotalDuration)
			fmt.Printf("[LIFECYCLE] 🎯 System ready for HTTP server startup\n")

			return nil
		},
		OnStop: func(ctx context.Context) error {
			fmt.Printf("[LIFECYCLE] 🛑 Stopping BootstrapSystem\n")
			return nil
		},
	})
}
