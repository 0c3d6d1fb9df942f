package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/modules/compliance/dto"
)

// fakeProviderStore serves canned license rows and records transitions
type fakeProviderStore struct {
	expired      map[dto.ProviderKind][]dto.LicenseRecord
	expiring     map[dto.ProviderKind][]dto.ExpiringLicense
	queryErr     map[dto.ProviderKind]error
	suspendErrBy map[uuid.UUID]error

	suspendCalls  []suspendCall
	windowFrom    time.Time
	windowTo      time.Time
	queryDeadline bool
}

type suspendCall struct {
	kind   dto.ProviderKind
	id     uuid.UUID
	reason string
}

func (f *fakeProviderStore) FindExpired(ctx context.Context, kind dto.ProviderKind, _ time.Time) ([]dto.LicenseRecord, error) {
	_, f.queryDeadline = ctx.Deadline()
	if err := f.queryErr[kind]; err != nil {
		return nil, err
	}
	return f.expired[kind], nil
}

func (f *fakeProviderStore) FindExpiringSoon(_ context.Context, kind dto.ProviderKind, from, to time.Time) ([]dto.ExpiringLicense, error) {
	if err := f.queryErr[kind]; err != nil {
		return nil, err
	}
	f.windowFrom, f.windowTo = from, to
	return f.expiring[kind], nil
}

func (f *fakeProviderStore) Suspend(_ context.Context, kind dto.ProviderKind, providerID uuid.UUID, reason string, _ time.Time) error {
	if err := f.suspendErrBy[providerID]; err != nil {
		return err
	}
	f.suspendCalls = append(f.suspendCalls, suspendCall{kind: kind, id: providerID, reason: reason})
	return nil
}

type fakeDocumentStore struct {
	expired       []dto.DocumentRecord
	queryErr      error
	markErrBy     map[uuid.UUID]error
	markedIDs     []uuid.UUID
	queryDeadline bool
}

func (f *fakeDocumentStore) FindExpired(ctx context.Context, _ time.Time) ([]dto.DocumentRecord, error) {
	_, f.queryDeadline = ctx.Deadline()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.expired, nil
}

func (f *fakeDocumentStore) MarkExpired(_ context.Context, documentID uuid.UUID) error {
	if err := f.markErrBy[documentID]; err != nil {
		return err
	}
	f.markedIDs = append(f.markedIDs, documentID)
	return nil
}

type fakeNotifier struct {
	notifyErrBy map[uuid.UUID]error
	notified    []dto.ExpiredItem
	summaries   [][]dto.ExpiredItem
	adminSent   int
	summaryErr  error
}

func (f *fakeNotifier) NotifyItemExpired(_ context.Context, item dto.ExpiredItem) error {
	if err := f.notifyErrBy[item.ID]; err != nil {
		return err
	}
	f.notified = append(f.notified, item)
	return nil
}

func (f *fakeNotifier) NotifyAdminSummary(_ context.Context, items []dto.ExpiredItem) (int, error) {
	f.summaries = append(f.summaries, items)
	return f.adminSent, f.summaryErr
}

type fakeLease struct {
	held       bool
	acquireErr error
	acquired   []string
	released   []string
}

func (f *fakeLease) Acquire(_ context.Context, runID string) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.acquired = append(f.acquired, runID)
	return true, nil
}

func (f *fakeLease) Release(_ context.Context, runID string) error {
	f.released = append(f.released, runID)
	return nil
}

type fakeSink struct {
	published []*dto.SweepReport
}

func (f *fakeSink) Publish(_ context.Context, report *dto.SweepReport) {
	f.published = append(f.published, report)
}

type sweepFixture struct {
	providers *fakeProviderStore
	documents *fakeDocumentStore
	notifier  *fakeNotifier
	lease     *fakeLease
	sink      *fakeSink
	engine    *ExpirySweepService
	now       time.Time
}

func newSweepFixture() *sweepFixture {
	f := &sweepFixture{
		providers: &fakeProviderStore{
			expired:  map[dto.ProviderKind][]dto.LicenseRecord{},
			expiring: map[dto.ProviderKind][]dto.ExpiringLicense{},
			queryErr: map[dto.ProviderKind]error{},
		},
		documents: &fakeDocumentStore{},
		notifier:  &fakeNotifier{adminSent: 1},
		lease:     &fakeLease{},
		sink:      &fakeSink{},
		now:       time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC),
	}

	f.engine = newExpirySweep(f.providers, f.documents, f.notifier, f.lease, f.sink, config.SweepConfig{
		ExpiringSoonDays: 30,
		LeaseTTL:         30 * time.Minute,
	})
	f.engine.now = func() time.Time { return f.now }
	return f
}

func license(kind dto.ProviderKind, licenseType, email string, expiredAt time.Time) dto.LicenseRecord {
	return dto.LicenseRecord{
		ProviderID:    uuid.New(),
		Kind:          kind,
		LicenseNumber: "LIC-001",
		LicenseType:   licenseType,
		ExpiresAt:     expiredAt,
		Status:        dto.ProviderStatusActive,
		OwnerEmail:    email,
		OwnerName:     "Dr. Amina Bello",
	}
}

func TestRunSweep_SuspendsAndNotifiesAcrossCategories(t *testing.T) {
	f := newSweepFixture()
	yesterday := f.now.AddDate(0, 0, -1)

	doc := license(dto.KindDoctor, LicenseTypeMDCN, "doctor@example.ng", yesterday)
	pharm := license(dto.KindPharmacy, LicenseTypePCN, "pharmacy@example.ng", yesterday)
	lab := license(dto.KindLaboratory, LicenseTypeMLSCN, "lab@example.ng", yesterday)
	f.providers.expired[dto.KindDoctor] = []dto.LicenseRecord{doc}
	f.providers.expired[dto.KindPharmacy] = []dto.LicenseRecord{pharm}
	f.providers.expired[dto.KindLaboratory] = []dto.LicenseRecord{lab}

	docExpiry := yesterday
	f.documents.expired = []dto.DocumentRecord{{
		DocumentID:   uuid.New(),
		OwnerID:      uuid.New(),
		DocumentType: "practice_license",
		ExpiresAt:    &docExpiry,
		Status:       dto.DocumentStatusApproved,
		OwnerEmail:   "owner@example.ng",
	}}

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, dto.CategoryCounts{Doctors: 1, Pharmacies: 1, Laboratories: 1, Documents: 1}, report.Expired)
	assert.Equal(t, 4, report.Suspended)
	assert.Equal(t, 4, report.ProvidersNotified)
	assert.Equal(t, 1, report.AdminsNotified)
	assert.Empty(t, report.Failures)
	assert.Equal(t, dto.TriggerManual, report.Trigger)

	// Categories are processed in fixed order, documents last
	require.Len(t, report.Items, 4)
	assert.Equal(t, dto.KindDoctor, report.Items[0].Kind)
	assert.Equal(t, dto.KindPharmacy, report.Items[1].Kind)
	assert.Equal(t, dto.KindLaboratory, report.Items[2].Kind)
	assert.Equal(t, dto.KindDocument, report.Items[3].Kind)

	// Each license suspension carries the machine-readable reason
	require.Len(t, f.providers.suspendCalls, 3)
	assert.Equal(t, "LICENSE_EXPIRED:MDCN", f.providers.suspendCalls[0].reason)
	assert.Equal(t, "LICENSE_EXPIRED:PCN", f.providers.suspendCalls[1].reason)
	assert.Equal(t, "LICENSE_EXPIRED:MLSCN", f.providers.suspendCalls[2].reason)

	// Documents are marked by their own id, never by owner
	require.Len(t, f.documents.markedIDs, 1)
	assert.Equal(t, f.documents.expired[0].DocumentID, f.documents.markedIDs[0])

	// Admin summary went out once with the full sequence
	require.Len(t, f.notifier.summaries, 1)
	assert.Len(t, f.notifier.summaries[0], 4)

	// Completed report was published
	require.Len(t, f.sink.published, 1)
	assert.Equal(t, report.RunID, f.sink.published[0].RunID)
}

func TestRunSweep_MissingEmailSkipsNotificationSilently(t *testing.T) {
	f := newSweepFixture()
	rec := license(dto.KindDoctor, LicenseTypeMDCN, "", f.now.AddDate(0, 0, -3))
	f.providers.expired[dto.KindDoctor] = []dto.LicenseRecord{rec}

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Suspended)
	assert.Equal(t, 0, report.ProvidersNotified)
	assert.Empty(t, report.Failures, "missing contact is not a failure")
	assert.Empty(t, f.notifier.notified)

	// Admin summary still includes the item
	require.Len(t, f.notifier.summaries, 1)
}

func TestRunSweep_EmptySweepSkipsAdminSummary(t *testing.T) {
	f := newSweepFixture()

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Expired.Total())
	assert.Equal(t, 0, report.AdminsNotified)
	assert.Empty(t, f.notifier.summaries)
	assert.Empty(t, report.Failures)

	// The completion report is still published
	require.Len(t, f.sink.published, 1)
}

func TestRunSweep_SkipsWhenLeaseHeld(t *testing.T) {
	f := newSweepFixture()
	f.lease.held = true
	f.providers.expired[dto.KindDoctor] = []dto.LicenseRecord{
		license(dto.KindDoctor, LicenseTypeMDCN, "doctor@example.ng", f.now.AddDate(0, 0, -1)),
	}

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerManual)
	require.ErrorIs(t, err, ErrSweepInProgress)
	assert.Nil(t, report)

	assert.Empty(t, f.providers.suspendCalls, "no transition may run while another sweep holds the lease")
	assert.Empty(t, f.notifier.notified)
	assert.Empty(t, f.sink.published)
	assert.Empty(t, f.lease.released, "a run that never acquired must not release")
}

func TestRunSweep_ReleasesLeaseAfterRun(t *testing.T) {
	f := newSweepFixture()

	_, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	require.Len(t, f.lease.acquired, 1)
	require.Len(t, f.lease.released, 1)
	assert.Equal(t, f.lease.acquired[0], f.lease.released[0])
}

func TestRunSweep_CategoryQueryFailureIsIsolated(t *testing.T) {
	f := newSweepFixture()
	f.providers.queryErr[dto.KindDoctor] = errors.New("relation unavailable")
	f.providers.expired[dto.KindPharmacy] = []dto.LicenseRecord{
		license(dto.KindPharmacy, LicenseTypePCN, "pharmacy@example.ng", f.now.AddDate(0, 0, -1)),
	}

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err, "a failed category must not abort the run")

	assert.Equal(t, 0, report.Expired.Doctors)
	assert.Equal(t, 1, report.Expired.Pharmacies)
	assert.Equal(t, 1, report.Suspended)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, dto.StageQuery, report.Failures[0].Stage)
	assert.Equal(t, dto.KindDoctor, report.Failures[0].Kind)
}

func TestRunSweep_TransitionFailureSkipsNotificationForThatItem(t *testing.T) {
	f := newSweepFixture()
	failing := license(dto.KindDoctor, LicenseTypeMDCN, "first@example.ng", f.now.AddDate(0, 0, -2))
	healthy := license(dto.KindDoctor, LicenseTypeMDCN, "second@example.ng", f.now.AddDate(0, 0, -1))
	f.providers.expired[dto.KindDoctor] = []dto.LicenseRecord{failing, healthy}
	f.providers.suspendErrBy = map[uuid.UUID]error{failing.ProviderID: errors.New("deadlock detected")}

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Expired.Doctors)
	assert.Equal(t, 1, report.Suspended)
	assert.Equal(t, 1, report.ProvidersNotified)

	require.Len(t, f.notifier.notified, 1)
	assert.Equal(t, healthy.ProviderID, f.notifier.notified[0].ID)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, dto.StageTransition, report.Failures[0].Stage)
	assert.Equal(t, failing.ProviderID.String(), report.Failures[0].ID)
}

func TestRunSweep_NotifyFailureStillCountsSuspension(t *testing.T) {
	f := newSweepFixture()
	rec := license(dto.KindLaboratory, LicenseTypeMLSCN, "lab@example.ng", f.now.AddDate(0, 0, -1))
	f.providers.expired[dto.KindLaboratory] = []dto.LicenseRecord{rec}
	f.notifier.notifyErrBy = map[uuid.UUID]error{rec.ProviderID: errors.New("smtp timeout")}

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Suspended)
	assert.Equal(t, 0, report.ProvidersNotified)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, dto.StageNotify, report.Failures[0].Stage)
}

func TestRunSweep_AdminSummaryFailureIsRecorded(t *testing.T) {
	f := newSweepFixture()
	f.providers.expired[dto.KindDoctor] = []dto.LicenseRecord{
		license(dto.KindDoctor, LicenseTypeMDCN, "doctor@example.ng", f.now.AddDate(0, 0, -1)),
	}
	f.notifier.adminSent = 0
	f.notifier.summaryErr = errors.New("all admin sends failed")

	report, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.Equal(t, 0, report.AdminsNotified)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, dto.StageSummary, report.Failures[0].Stage)
}

func TestCheckExpiringSoon_DefaultsToDoctorsAndConfiguredWindow(t *testing.T) {
	f := newSweepFixture()
	f.providers.expiring[dto.KindDoctor] = []dto.ExpiringLicense{
		{ProviderID: uuid.New(), Kind: dto.KindDoctor, DaysLeft: 12},
	}

	licenses, err := f.engine.CheckExpiringSoon(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, licenses, 1)

	assert.Equal(t, f.now, f.providers.windowFrom)
	assert.Equal(t, f.now.AddDate(0, 0, 30), f.providers.windowTo)
}

func TestCheckExpiringSoon_CustomDaysAndKinds(t *testing.T) {
	f := newSweepFixture()
	f.providers.expiring[dto.KindPharmacy] = []dto.ExpiringLicense{
		{ProviderID: uuid.New(), Kind: dto.KindPharmacy, DaysLeft: 3},
	}
	f.providers.expiring[dto.KindLaboratory] = []dto.ExpiringLicense{
		{ProviderID: uuid.New(), Kind: dto.KindLaboratory, DaysLeft: 5},
	}

	licenses, err := f.engine.CheckExpiringSoon(context.Background(), 7, dto.KindPharmacy, dto.KindLaboratory)
	require.NoError(t, err)
	require.Len(t, licenses, 2)

	assert.Equal(t, f.now.AddDate(0, 0, 7), f.providers.windowTo)
}

func TestCheckExpiringSoon_RejectsDocumentKind(t *testing.T) {
	f := newSweepFixture()

	_, err := f.engine.CheckExpiringSoon(context.Background(), 30, dto.KindDocument)
	require.Error(t, err)
}

func TestCheckExpiringSoon_MutatesNothing(t *testing.T) {
	f := newSweepFixture()
	f.providers.expiring[dto.KindDoctor] = []dto.ExpiringLicense{
		{ProviderID: uuid.New(), Kind: dto.KindDoctor, DaysLeft: 29},
	}

	_, err := f.engine.CheckExpiringSoon(context.Background(), 30)
	require.NoError(t, err)

	assert.Empty(t, f.providers.suspendCalls)
	assert.Empty(t, f.notifier.notified)
	assert.Empty(t, f.notifier.summaries)
}

func TestRunSweep_CategoryTimeoutBoundsQueries(t *testing.T) {
	f := newSweepFixture()
	f.engine.sweepCfg.CategoryTimeout = time.Minute

	_, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.True(t, f.providers.queryDeadline, "category queries must carry a deadline")
	assert.True(t, f.documents.queryDeadline, "document query must carry a deadline")
}

func TestRunSweep_NoCategoryTimeoutLeavesQueriesUnbounded(t *testing.T) {
	f := newSweepFixture()
	f.engine.sweepCfg.CategoryTimeout = 0

	_, err := f.engine.RunSweep(context.Background(), dto.TriggerSchedule)
	require.NoError(t, err)

	assert.False(t, f.providers.queryDeadline)
	assert.False(t, f.documents.queryDeadline)
}

func TestLookAheadDays(t *testing.T) {
	f := newSweepFixture()

	assert.Equal(t, 30, f.engine.LookAheadDays(0))
	assert.Equal(t, 30, f.engine.LookAheadDays(-5))
	assert.Equal(t, 90, f.engine.LookAheadDays(90))
}
