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

// recordingMailer captures outbound mail and fails addresses on demand
type recordingMailer struct {
	sent    []sentMail
	failFor map[string]error
}

type sentMail struct {
	from    string
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(_ context.Context, from, to, subject, body string) error {
	if err := m.failFor[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMail{from: from, to: to, subject: subject, body: body})
	return nil
}

func newNotificationFixture(adminEmails ...string) (*NotificationService, *recordingMailer) {
	mailer := &recordingMailer{failFor: map[string]error{}}
	svc := &NotificationService{
		mailer: mailer,
		config: config.NotificationConfig{
			AdminEmails:   adminEmails,
			FromAddress:   "compliance@carelink.africa",
			PortalBaseURL: "https://portal.carelink.africa/",
		},
	}
	return svc, mailer
}

func TestRenderTemplate_SubstitutesPlaceholders(t *testing.T) {
	subject, body, err := RenderTemplate(TemplateLicenseSuspended, map[string]string{
		"name":              "Dr. Amina Bello",
		"license_type":      "MDCN",
		"expired_at":        "1 March 2026",
		"reactivation_link": "https://portal.carelink.africa/provider/compliance/reactivation",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your MDCN license has expired - account suspended", subject)
	assert.Contains(t, body, "Dear Dr. Amina Bello,")
	assert.Contains(t, body, "expired on 1 March 2026")
	assert.Contains(t, body, "https://portal.carelink.africa/provider/compliance/reactivation")
	assert.NotContains(t, body, "{{")
}

func TestRenderTemplate_UnknownTemplate(t *testing.T) {
	_, _, err := RenderTemplate("no-such-template", nil)
	require.Error(t, err)
}

func TestNotifyItemExpired_License(t *testing.T) {
	svc, mailer := newNotificationFixture()

	err := svc.NotifyItemExpired(context.Background(), dto.ExpiredItem{
		ID:        uuid.New(),
		Kind:      dto.KindPharmacy,
		TypeLabel: "PCN",
		ExpiredAt: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		Email:     "pharmacy@example.ng",
		Name:      "GoodHealth Pharmacy",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "compliance@carelink.africa", mailer.sent[0].from)
	assert.Equal(t, "pharmacy@example.ng", mailer.sent[0].to)
	assert.Equal(t, "Your PCN license has expired - account suspended", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "Dear GoodHealth Pharmacy,")
	assert.Contains(t, mailer.sent[0].body, "28 February 2026")
}

func TestNotifyItemExpired_DocumentUsesDocumentTemplate(t *testing.T) {
	svc, mailer := newNotificationFixture()

	err := svc.NotifyItemExpired(context.Background(), dto.ExpiredItem{
		ID:        uuid.New(),
		Kind:      dto.KindDocument,
		TypeLabel: "practice_license",
		ExpiredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Email:     "owner@example.ng",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, `Your document "practice_license" has expired`, mailer.sent[0].subject)
	// No name resolved, fall back to the generic salutation
	assert.Contains(t, mailer.sent[0].body, "Dear Provider,")
}

func TestNotifyItemExpired_MailerFailureIsWrapped(t *testing.T) {
	svc, mailer := newNotificationFixture()
	mailer.failFor["down@example.ng"] = errors.New("connection refused")

	err := svc.NotifyItemExpired(context.Background(), dto.ExpiredItem{
		ID:        uuid.New(),
		Kind:      dto.KindDoctor,
		TypeLabel: "MDCN",
		Email:     "down@example.ng",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNotifyAdminSummary_FansOutToAllAdmins(t *testing.T) {
	svc, mailer := newNotificationFixture("ops@carelink.africa", "compliance@carelink.africa")

	items := []dto.ExpiredItem{
		{ID: uuid.New(), Kind: dto.KindDoctor, TypeLabel: "MDCN", ExpiredAt: time.Now(), Email: "a@example.ng"},
		{ID: uuid.New(), Kind: dto.KindDocument, TypeLabel: "cac_certificate", ExpiredAt: time.Now()},
	}

	sent, err := svc.NotifyAdminSummary(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "compliance@carelink.africa", mailer.sent[0].from)
	assert.Equal(t, "Compliance sweep: 2 expired credential(s)", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "1. [doctor] MDCN")
	assert.Contains(t, mailer.sent[0].body, "2. [document] cac_certificate")
}

func TestNotifyAdminSummary_PartialFailureStillCountsSuccesses(t *testing.T) {
	svc, mailer := newNotificationFixture("ok@carelink.africa", "broken@carelink.africa")
	mailer.failFor["broken@carelink.africa"] = errors.New("mailbox full")

	sent, err := svc.NotifyAdminSummary(context.Background(), []dto.ExpiredItem{
		{ID: uuid.New(), Kind: dto.KindLaboratory, TypeLabel: "MLSCN", ExpiredAt: time.Now()},
	})
	require.Error(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, err.Error(), "broken@carelink.africa")
}

func TestNotifyAdminSummary_NoAdminsConfigured(t *testing.T) {
	svc, mailer := newNotificationFixture()

	sent, err := svc.NotifyAdminSummary(context.Background(), []dto.ExpiredItem{
		{ID: uuid.New(), Kind: dto.KindDoctor, TypeLabel: "MDCN", ExpiredAt: time.Now()},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, mailer.sent)
}

func TestReactivationLink_NormalizesTrailingSlash(t *testing.T) {
	svc, _ := newNotificationFixture()

	assert.Equal(t,
		"https://portal.carelink.africa/provider/compliance/reactivation",
		svc.reactivationLink())
}
