package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/infrastructure/database/postgres"
)

// complianceTables lists the tables the sweep reads and writes.
// Migrations belong to the provisioning pipeline, not this service,
// so startup only verifies the schema is present.
var complianceTables = []string{
	"users",
	"doctor_profiles",
	"pharmacy_profiles",
	"laboratory_profiles",
	"provider_documents",
}

// SchemaManager verifies the compliance schema this service depends on
type SchemaManager struct {
	pgClient *postgres.Client
	config   *config.Config
}

func NewSchemaManager(pgClient *postgres.Client, cfg *config.Config) *SchemaManager {
	return &SchemaManager{
		pgClient: pgClient,
		config:   cfg,
	}
}

// VerifyComplianceSchema checks that every table the sweep touches exists
func (sm *SchemaManager) VerifyComplianceSchema(ctx context.Context) error {
	fmt.Printf("[SCHEMA] Verifying compliance schema (%d tables)\n", len(complianceTables))

	missing, err := sm.findMissingTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required tables: %s (run the platform migrations first)", strings.Join(missing, ", "))
	}

	fmt.Printf("[SCHEMA] ✅ Compliance schema verified\n")
	return nil
}

func (sm *SchemaManager) findMissingTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`

	rows, err := sm.pgClient.Pool().Query(ctx, query, complianceTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]bool, len(complianceTables))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, table := range complianceTables {
		if !found[table] {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
