package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderKind identifies which record category an item belongs to
type ProviderKind string

const (
	KindDoctor     ProviderKind = "doctor"
	KindPharmacy   ProviderKind = "pharmacy"
	KindLaboratory ProviderKind = "laboratory"
	KindDocument   ProviderKind = "document"
)

// ProviderKinds lists the license-bearing kinds in sweep order
var ProviderKinds = []ProviderKind{KindDoctor, KindPharmacy, KindLaboratory}

func (k ProviderKind) Valid() bool {
	switch k {
	case KindDoctor, KindPharmacy, KindLaboratory, KindDocument:
		return true
	}
	return false
}

// Provider status values (onboarding owns the rest of the lifecycle)
const (
	ProviderStatusActive    = "active"
	ProviderStatusPending   = "pending"
	ProviderStatusSuspended = "suspended"
)

// Document verification status values
const (
	DocumentStatusUnverified  = "unverified"
	DocumentStatusUnderReview = "under_review"
	DocumentStatusApproved    = "approved"
	DocumentStatusRejected    = "rejected"
	DocumentStatusExpired     = "expired"
)

// SuspensionReason builds the machine-readable tag recorded on suspension.
// Format: LICENSE_EXPIRED:<licenseType>
func SuspensionReason(licenseType string) string {
	return fmt.Sprintf("LICENSE_EXPIRED:%s", licenseType)
}

// LicenseRecord is one provider row joined with its owner's contact identity.
// Owner fields are empty when the owning user cannot be resolved.
type LicenseRecord struct {
	ProviderID    uuid.UUID    `json:"provider_id"`
	Kind          ProviderKind `json:"kind"`
	LicenseNumber string       `json:"license_number"`
	LicenseType   string       `json:"license_type"` // MDCN, PCN, MLSCN
	ExpiresAt     time.Time    `json:"expires_at"`
	Status        string       `json:"status"`
	OwnerEmail    string       `json:"owner_email"`
	OwnerName     string       `json:"owner_name"`
}

// DocumentRecord is one approved provider document joined with owner contact
type DocumentRecord struct {
	DocumentID   uuid.UUID  `json:"document_id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	DocumentType string     `json:"document_type"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Status       string     `json:"status"`
	OwnerEmail   string     `json:"owner_email"`
	OwnerName    string     `json:"owner_name"`
}

// ExpiredItem is derived fresh each sweep run, never persisted
type ExpiredItem struct {
	ID        uuid.UUID    `json:"id" bson:"id"`
	Kind      ProviderKind `json:"kind" bson:"kind"`
	TypeLabel string       `json:"type_label" bson:"type_label"` // license type or document type
	ExpiredAt time.Time    `json:"expired_at" bson:"expired_at"`
	Email     string       `json:"email,omitempty" bson:"email,omitempty"`
	Name      string       `json:"name,omitempty" bson:"name,omitempty"`
}

// ExpiredItemFromLicense maps a license row into the combined sweep sequence
func ExpiredItemFromLicense(r LicenseRecord) ExpiredItem {
	return ExpiredItem{
		ID:        r.ProviderID,
		Kind:      r.Kind,
		TypeLabel: r.LicenseType,
		ExpiredAt: r.ExpiresAt,
		Email:     r.OwnerEmail,
		Name:      r.OwnerName,
	}
}

// ExpiredItemFromDocument maps a document row into the combined sweep sequence
func ExpiredItemFromDocument(r DocumentRecord) ExpiredItem {
	item := ExpiredItem{
		ID:        r.DocumentID,
		Kind:      KindDocument,
		TypeLabel: r.DocumentType,
		Email:     r.OwnerEmail,
		Name:      r.OwnerName,
	}
	if r.ExpiresAt != nil {
		item.ExpiredAt = *r.ExpiresAt
	}
	return item
}
