package bootstrap

import (
	"context"
	"fmt"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/infrastructure/database/postgres"
)

// ExtensionManager ensures the required PostgreSQL extensions are installed
type ExtensionManager struct {
	pgClient *postgres.Client
	config   *config.Config
}

func NewExtensionManager(pgClient *postgres.Client, cfg *config.Config) *ExtensionManager {
	return &ExtensionManager{
		pgClient: pgClient,
		config:   cfg,
	}
}

// EnsureRequiredExtensions installs every extension the service relies on
func (em *ExtensionManager) EnsureRequiredExtensions(ctx context.Context) error {
	fmt.Printf("[EXTENSIONS] Ensuring required PostgreSQL extensions\n")

	// uuid-ossp backs the id defaults of the provider tables
	if err := em.ensureExtension(ctx, "uuid-ossp"); err != nil {
		return fmt.Errorf("failed to ensure uuid-ossp extension: %w", err)
	}

	fmt.Printf("[EXTENSIONS] ✅ All required extensions installed\n")
	return nil
}

// ensureExtension creates one PostgreSQL extension when absent
func (em *ExtensionManager) ensureExtension(ctx context.Context, extensionName string) error {
	exists, err := em.checkExtensionExists(ctx, extensionName)
	if err != nil {
		return fmt.Errorf("failed to check extension %s: %w", extensionName, err)
	}

	if exists {
		fmt.Printf("[EXTENSIONS] ✅ Extension %s already installed\n", extensionName)
		return nil
	}

	fmt.Printf("[EXTENSIONS] 🔧 Creating extension %s...\n", extensionName)

	query := fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, extensionName)
	_, err = em.pgClient.Pool().Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create extension %s: %w", extensionName, err)
	}

	exists, err = em.checkExtensionExists(ctx, extensionName)
	if err != nil {
		return fmt.Errorf("failed to verify extension %s after creation: %w", extensionName, err)
	}
	if !exists {
		return fmt.Errorf("extension %s was not created successfully", extensionName)
	}

	fmt.Printf("[EXTENSIONS] ✅ Extension %s created\n", extensionName)
	return nil
}

func (em *ExtensionManager) checkExtensionExists(ctx context.Context, extensionName string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM pg_extension
			WHERE extname = $1
		)
	`

	var exists bool
	err := em.pgClient.Pool().QueryRow(ctx, query, extensionName).Scan(&exists)
	return exists, err
}
