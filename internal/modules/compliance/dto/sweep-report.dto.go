package dto

import (
	"time"

	"github.com/google/uuid"
)

// Sweep trigger origins
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Sweep failure stages
const (
	StageQuery      = "query"
	StageTransition = "transition"
	StageNotify     = "notify"
	StageSummary    = "summary"
)

// SweepFailure records one isolated failure without aborting the run
type SweepFailure struct {
	Stage string       `json:"stage" bson:"stage"`
	Kind  ProviderKind `json:"kind" bson:"kind"`
	ID    string       `json:"id,omitempty" bson:"id,omitempty"`
	Error string       `json:"error" bson:"error"`
}

// CategoryCounts holds per-category expired totals for one run
type CategoryCounts struct {
	Doctors      int `json:"doctors" bson:"doctors"`
	Pharmacies   int `json:"pharmacies" bson:"pharmacies"`
	Laboratories int `json:"laboratories" bson:"laboratories"`
	Documents    int `json:"documents" bson:"documents"`
}

// SweepReport is the operator-facing summary of one sweep run
type SweepReport struct {
	RunID             uuid.UUID      `json:"run_id" bson:"run_id"`
	Trigger           string         `json:"trigger" bson:"trigger"`
	StartedAt         time.Time      `json:"started_at" bson:"started_at"`
	FinishedAt        time.Time      `json:"finished_at" bson:"finished_at"`
	Expired           CategoryCounts `json:"expired" bson:"expired"`
	Suspended         int            `json:"suspended" bson:"suspended"`
	ProvidersNotified int            `json:"providers_notified" bson:"providers_notified"`
	AdminsNotified    int            `json:"admins_notified" bson:"admins_notified"`
	Items             []ExpiredItem  `json:"items,omitempty" bson:"items,omitempty"`
	Failures          []SweepFailure `json:"failures,omitempty" bson:"failures,omitempty"`
}

// Total returns the size of the combined expired sequence
func (c CategoryCounts) Total() int {
	return c.Doctors + c.Pharmacies + c.Laboratories + c.Documents
}

func (r *SweepReport) AddFailure(stage string, kind ProviderKind, id string, err error) {
	r.Failures = append(r.Failures, SweepFailure{
		Stage: stage,
		Kind:  kind,
		ID:    id,
		Error: err.Error(),
	})
}
