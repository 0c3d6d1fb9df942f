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

// DocumentStoreService reads and transitions provider document records
type DocumentStoreService struct {
	db *postgres.Client
}

func NewDocumentStoreService(db *postgres.Client) *DocumentStoreService {
	return &DocumentStoreService{db: db}
}

// FindExpired returns approved documents with expiry <= now, ordered by expiry
// ascending, owner contact joined.
func (s *DocumentStoreService) FindExpired(ctx context.Context, now time.Time) ([]dto.DocumentRecord, error) {
	rows, err := s.db.Query(ctx, queries.DocumentExpiryQueries.FindExpired, now)
	if err != nil {
		return nil, fmt.Errorf("find expired documents failed: %w", err)
	}
	defer rows.Close()

	var records []dto.DocumentRecord
	for rows.Next() {
		var record dto.DocumentRecord
		if err := rows.Scan(
			&record.DocumentID,
			&record.OwnerID,
			&record.DocumentType,
			&record.ExpiresAt,
			&record.Status,
			&record.OwnerEmail,
			&record.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("scan expired document failed: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired documents failed: %w", err)
	}

	return records, nil
}

// MarkExpired applies the approved → expired transition to one document.
// Scoped to the document id so sibling approved documents of the same owner
// are never swept along with it.
func (s *DocumentStoreService) MarkExpired(ctx context.Context, documentID uuid.UUID) error {
	affected, err := s.db.ExecRows(ctx, queries.DocumentExpiryQueries.MarkExpired, documentID)
	if err != nil {
		return fmt.Errorf("mark document %s expired failed: %w", documentID, err)
	}
	if affected == 0 {
		fmt.Printf("[SWEEP] document %s already transitioned, skipping\n", documentID)
	}

	return nil
}
