package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carelink-compliance-core/internal/infrastructure/database/postgres"
	"carelink-compliance-core/internal/modules/compliance/dto"
	"carelink-compliance-core/internal/modules/compliance/queries"
)

// License type labels per provider kind (Nigerian regulator registries)
const (
	LicenseTypeMDCN  = "MDCN"  // Medical and Dental Council of Nigeria
	LicenseTypePCN   = "PCN"   // Pharmacists Council of Nigeria
	LicenseTypeMLSCN = "MLSCN" // Medical Laboratory Science Council of Nigeria
)

// providerKindDescriptor binds a kind to its license label and query set.
// Adding a provider kind means adding one entry here, nothing else.
type providerKindDescriptor struct {
	Kind         dto.ProviderKind
	LicenseLabel string
	Queries      queries.ProviderKindQuerySet
}

var providerKindTable = map[dto.ProviderKind]providerKindDescriptor{
	dto.KindDoctor: {
		Kind:         dto.KindDoctor,
		LicenseLabel: LicenseTypeMDCN,
		Queries:      queries.ProviderExpiryQueries.Doctor,
	},
	dto.KindPharmacy: {
		Kind:         dto.KindPharmacy,
		LicenseLabel: LicenseTypePCN,
		Queries:      queries.ProviderExpiryQueries.Pharmacy,
	},
	dto.KindLaboratory: {
		Kind:         dto.KindLaboratory,
		LicenseLabel: LicenseTypeMLSCN,
		Queries:      queries.ProviderExpiryQueries.Laboratory,
	},
}

// LicenseTypeFor returns the regulator label for a license-bearing kind
func LicenseTypeFor(kind dto.ProviderKind) (string, error) {
	desc, ok := providerKindTable[kind]
	if !ok {
		return "", fmt.Errorf("unknown provider kind: %s", kind)
	}
	return desc.LicenseLabel, nil
}

// ProviderStoreService reads and transitions provider license records.
// One generic implementation serves all three kinds via the descriptor table.
type ProviderStoreService struct {
	db *postgres.Client
}

func NewProviderStoreService(db *postgres.Client) *ProviderStoreService {
	return &ProviderStoreService{db: db}
}

// FindExpired returns records with expiry <= now and status not yet suspended,
// ordered by expiry ascending, owner contact joined.
func (s *ProviderStoreService) FindExpired(ctx context.Context, kind dto.ProviderKind, now time.Time) ([]dto.LicenseRecord, error) {
	desc, ok := providerKindTable[kind]
	if !ok {
		return nil, fmt.Errorf("unknown provider kind: %s", kind)
	}

	rows, err := s.db.Query(ctx, desc.Queries.FindExpired, now)
	if err != nil {
		return nil, fmt.Errorf("find expired %s licenses failed: %w", kind, err)
	}
	defer rows.Close()

	var records []dto.LicenseRecord
	for rows.Next() {
		record := dto.LicenseRecord{
			Kind:        kind,
			LicenseType: desc.LicenseLabel,
		}
		if err := rows.Scan(
			&record.ProviderID,
			&record.LicenseNumber,
			&record.ExpiresAt,
			&record.Status,
			&record.OwnerEmail,
			&record.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("scan expired %s license failed: %w", kind, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired %s licenses failed: %w", kind, err)
	}

	return records, nil
}

// FindExpiringSoon returns active records with expiry strictly within (from, to]
func (s *ProviderStoreService) FindExpiringSoon(ctx context.Context, kind dto.ProviderKind, from, to time.Time) ([]dto.ExpiringLicense, error) {
	desc, ok := providerKindTable[kind]
	if !ok {
		return nil, fmt.Errorf("unknown provider kind: %s", kind)
	}

	rows, err := s.db.Query(ctx, desc.Queries.FindExpiringSoon, from, to)
	if err != nil {
		return nil, fmt.Errorf("find expiring %s licenses failed: %w", kind, err)
	}
	defer rows.Close()

	var licenses []dto.ExpiringLicense
	for rows.Next() {
		license := dto.ExpiringLicense{
			Kind:        kind,
			LicenseType: desc.LicenseLabel,
		}
		if err := rows.Scan(
			&license.ProviderID,
			&license.LicenseNumber,
			&license.ExpiresAt,
			&license.OwnerEmail,
			&license.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("scan expiring %s license failed: %w", kind, err)
		}
		license.DaysLeft = int(license.ExpiresAt.Sub(from).Hours() / 24)
		licenses = append(licenses, license)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiring %s licenses failed: %w", kind, err)
	}

	return licenses, nil
}

// Suspend applies the active → suspended transition, keyed by provider id.
// The guard in the statement makes re-suspension a no-op rather than an overwrite.
func (s *ProviderStoreService) Suspend(ctx context.Context, kind dto.ProviderKind, providerID uuid.UUID, reason string, suspendedAt time.Time) error {
	desc, ok := providerKindTable[kind]
	if !ok {
		return fmt.Errorf("unknown provider kind: %s", kind)
	}

	affected, err := s.db.ExecRows(ctx, desc.Queries.Suspend, providerID, reason, suspendedAt)
	if err != nil {
		return fmt.Errorf("suspend %s %s failed: %w", kind, providerID, err)
	}
	if affected == 0 {
		// Raced with a concurrent transition; nothing left to do
		fmt.Printf("[SWEEP] %s %s already suspended, skipping\n", kind, providerID)
	}

	return nil
}
