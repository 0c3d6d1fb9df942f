package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/modules/compliance/dto"
)

// ErrSweepInProgress is returned when a trigger fires while another run holds
// the sweep lease. The trigger is expected to skip, not queue.
var ErrSweepInProgress = errors.New("a compliance sweep is already in progress")

// ProviderStore reads and transitions license records for one provider kind
type ProviderStore interface {
	FindExpired(ctx context.Context, kind dto.ProviderKind, now time.Time) ([]dto.LicenseRecord, error)
	FindExpiringSoon(ctx context.Context, kind dto.ProviderKind, from, to time.Time) ([]dto.ExpiringLicense, error)
	Suspend(ctx context.Context, kind dto.ProviderKind, providerID uuid.UUID, reason string, suspendedAt time.Time) error
}

// DocumentStore reads and transitions provider document records
type DocumentStore interface {
	FindExpired(ctx context.Context, now time.Time) ([]dto.DocumentRecord, error)
	MarkExpired(ctx context.Context, documentID uuid.UUID) error
}

// Notifier fans out provider and administrator notifications
type Notifier interface {
	NotifyItemExpired(ctx context.Context, item dto.ExpiredItem) error
	NotifyAdminSummary(ctx context.Context, items []dto.ExpiredItem) (int, error)
}

// RunLease is the mutual-exclusion guard across concurrent triggers
type RunLease interface {
	Acquire(ctx context.Context, runID string) (bool, error)
	Release(ctx context.Context, runID string) error
}

// ReportSink records completed run reports
type ReportSink interface {
	Publish(ctx context.Context, report *dto.SweepReport)
}

// ExpirySweepService is the engine behind the daily compliance sweep: it finds
// expired licenses and documents, applies the suspension transitions and fans
// out notifications, one item fully processed before the next begins.
type ExpirySweepService struct {
	providers ProviderStore
	documents DocumentStore
	notifier  Notifier
	lease     RunLease
	reports   ReportSink
	sweepCfg  config.SweepConfig
	now       func() time.Time
}

func NewExpirySweepService(
	providers *ProviderStoreService,
	documents *DocumentStoreService,
	notifier *NotificationService,
	lease *SweepLeaseService,
	reports *SweepReportService,
	cfg *config.Config,
) *ExpirySweepService {
	return newExpirySweep(providers, documents, notifier, lease, reports, cfg.Sweep)
}

func newExpirySweep(
	providers ProviderStore,
	documents DocumentStore,
	notifier Notifier,
	lease RunLease,
	reports ReportSink,
	sweepCfg config.SweepConfig,
) *ExpirySweepService {
	return &ExpirySweepService{
		providers: providers,
		documents: documents,
		notifier:  notifier,
		lease:     lease,
		reports:   reports,
		sweepCfg:  sweepCfg,
		now:       time.Now,
	}
}

// RunSweep executes one full compliance sweep. Failures are isolated per item:
// a failed query, transition or notification is recorded in the report and the
// sweep continues with the remaining work.
func (s *ExpirySweepService) RunSweep(ctx context.Context, trigger string) (*dto.SweepReport, error) {
	runID := uuid.New()

	if s.lease != nil {
		acquired, err := s.lease.Acquire(ctx, runID.String())
		if err != nil {
			return nil, fmt.Errorf("sweep lease acquisition failed: %w", err)
		}
		if !acquired {
			fmt.Printf("[SWEEP] run %s skipped: %v\n", runID, ErrSweepInProgress)
			return nil, ErrSweepInProgress
		}
		defer func() {
			if err := s.lease.Release(context.WithoutCancel(ctx), runID.String()); err != nil {
				fmt.Printf("[SWEEP] ⚠️  lease release failed: %v\n", err)
			}
		}()
	}

	now := s.now()
	report := &dto.SweepReport{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: now,
	}

	fmt.Printf("[SWEEP] 🔍 run %s started (trigger: %s)\n", runID, trigger)

	// 1. Collect the four categories in fixed order: doctors, pharmacies,
	//    laboratories, then documents. Within a category, expiry ascending.
	items := s.collectExpired(ctx, now, report)

	// 2. Transition and notify, strictly one item at a time
	for _, item := range items {
		if !s.applyTransition(ctx, item, now, report) {
			continue
		}
		report.Suspended++

		if item.Email == "" {
			// Missing owner contact is not an error; skip the notification
			continue
		}
		if err := s.notifier.NotifyItemExpired(ctx, item); err != nil {
			report.AddFailure(dto.StageNotify, item.Kind, item.ID.String(), err)
			continue
		}
		report.ProvidersNotified++
	}

	// 3. Administrator fan-out, only when the combined sequence was non-empty
	if len(items) > 0 {
		sent, err := s.notifier.NotifyAdminSummary(ctx, items)
		report.AdminsNotified = sent
		if err != nil {
			report.AddFailure(dto.StageSummary, "", "", err)
		}
	}

	report.Items = items
	report.FinishedAt = s.now()

	fmt.Printf("[SWEEP] ✅ run %s completed: %d expired, %d suspended, %d providers notified, %d admins notified, %d failures (%v)\n",
		runID, report.Expired.Total(), report.Suspended, report.ProvidersNotified,
		report.AdminsNotified, len(report.Failures), report.FinishedAt.Sub(report.StartedAt))

	if s.reports != nil {
		s.reports.Publish(ctx, report)
	}

	return report, nil
}

// categoryCtx bounds one category query so a stuck scan cannot starve the rest
// of the run. Zero timeout means no bound.
func (s *ExpirySweepService) categoryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.sweepCfg.CategoryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.sweepCfg.CategoryTimeout)
}

// collectExpired builds the combined expired sequence and fills the per-category
// counts. A category whose query fails contributes nothing but does not abort.
func (s *ExpirySweepService) collectExpired(ctx context.Context, now time.Time, report *dto.SweepReport) []dto.ExpiredItem {
	var items []dto.ExpiredItem

	for _, kind := range dto.ProviderKinds {
		queryCtx, cancel := s.categoryCtx(ctx)
		records, err := s.providers.FindExpired(queryCtx, kind, now)
		cancel()
		if err != nil {
			fmt.Printf("[SWEEP] ⚠️  %s query failed: %v\n", kind, err)
			report.AddFailure(dto.StageQuery, kind, "", err)
			continue
		}

		switch kind {
		case dto.KindDoctor:
			report.Expired.Doctors = len(records)
		case dto.KindPharmacy:
			report.Expired.Pharmacies = len(records)
		case dto.KindLaboratory:
			report.Expired.Laboratories = len(records)
		}

		for _, r := range records {
			items = append(items, dto.ExpiredItemFromLicense(r))
		}
	}

	queryCtx, cancel := s.categoryCtx(ctx)
	docs, err := s.documents.FindExpired(queryCtx, now)
	cancel()
	if err != nil {
		fmt.Printf("[SWEEP] ⚠️  document query failed: %v\n", err)
		report.AddFailure(dto.StageQuery, dto.KindDocument, "", err)
		return items
	}
	report.Expired.Documents = len(docs)

	for _, d := range docs {
		items = append(items, dto.ExpiredItemFromDocument(d))
	}

	return items
}

// applyTransition performs the per-kind suspension write for one item
func (s *ExpirySweepService) applyTransition(ctx context.Context, item dto.ExpiredItem, now time.Time, report *dto.SweepReport) bool {
	var err error
	if item.Kind == dto.KindDocument {
		err = s.documents.MarkExpired(ctx, item.ID)
	} else {
		err = s.providers.Suspend(ctx, item.Kind, item.ID, dto.SuspensionReason(item.TypeLabel), now)
	}

	if err != nil {
		fmt.Printf("[SWEEP] ⚠️  transition failed for %s %s: %v\n", item.Kind, item.ID, err)
		report.AddFailure(dto.StageTransition, item.Kind, item.ID.String(), err)
		return false
	}
	return true
}

// LookAheadDays resolves a requested look-ahead to the effective window size
func (s *ExpirySweepService) LookAheadDays(requested int) int {
	if requested <= 0 {
		return s.sweepCfg.ExpiringSoonDays
	}
	return requested
}

// CheckExpiringSoon returns active licenses expiring strictly within
// (now, now+daysAhead]. Read-only: no state is mutated and nothing is sent.
// Defaults: the configured look-ahead window and the doctor category.
func (s *ExpirySweepService) CheckExpiringSoon(ctx context.Context, daysAhead int, kinds ...dto.ProviderKind) ([]dto.ExpiringLicense, error) {
	daysAhead = s.LookAheadDays(daysAhead)
	if len(kinds) == 0 {
		kinds = []dto.ProviderKind{dto.KindDoctor}
	}

	from := s.now()
	to := from.AddDate(0, 0, daysAhead)

	var licenses []dto.ExpiringLicense
	for _, kind := range kinds {
		if kind == dto.KindDocument {
			return nil, fmt.Errorf("expiring-soon look-ahead does not cover documents")
		}

		found, err := s.providers.FindExpiringSoon(ctx, kind, from, to)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, found...)
	}

	return licenses, nil
}
