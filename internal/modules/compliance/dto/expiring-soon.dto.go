package dto

import (
	"time"

	"github.com/google/uuid"
)

// ExpiringSoonRequest is the look-ahead query for licenses nearing expiry
type ExpiringSoonRequest struct {
	DaysAhead int      `form:"days_ahead" validate:"omitempty,min=1,max=365"`
	Kinds     []string `form:"kinds" collection_format:"csv" validate:"omitempty,dive,oneof=doctor pharmacy laboratory"`
}

// SweepHistoryRequest pages through the archived sweep reports
type SweepHistoryRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ExpiringLicense is one advance-warning row; read-only, no state mutation
type ExpiringLicense struct {
	ProviderID    uuid.UUID    `json:"provider_id"`
	Kind          ProviderKind `json:"kind"`
	LicenseNumber string       `json:"license_number"`
	LicenseType   string       `json:"license_type"`
	ExpiresAt     time.Time    `json:"expires_at"`
	DaysLeft      int          `json:"days_left"`
	OwnerEmail    string       `json:"owner_email"`
	OwnerName     string       `json:"owner_name"`
}

// ExpiringSoonResponse wraps the look-ahead results
type ExpiringSoonResponse struct {
	DaysAhead int               `json:"days_ahead"`
	Count     int               `json:"count"`
	Licenses  []ExpiringLicense `json:"licenses"`
}
