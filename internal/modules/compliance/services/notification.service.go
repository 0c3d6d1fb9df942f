package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/modules/compliance/dto"
)

// Mailer is the delivery port. Actual transport (SMTP, provider API) lives
// outside this service; sends are fire-and-forget from the sweep's viewpoint.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// ConsoleMailer logs outbound mail instead of delivering it. Default binding
// until a transport is deployed alongside the service.
type ConsoleMailer struct{}

func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

func (m *ConsoleMailer) Send(_ context.Context, from, to, subject, body string) error {
	fmt.Printf("[MAILER] %s → %s | %s | %d bytes\n", from, to, subject, len(body))
	return nil
}

// MessageTemplate is a reusable notification template with {{key}} placeholders
type MessageTemplate struct {
	ID      string
	Subject string
	Body    string
}

// Template identifiers
const (
	TemplateLicenseSuspended  = "license-suspended"
	TemplateDocumentExpired   = "document-expired"
	TemplateComplianceSummary = "compliance-summary"
)

var messageTemplates = map[string]MessageTemplate{
	TemplateLicenseSuspended: {
		ID:      TemplateLicenseSuspended,
		Subject: "Your {{license_type}} license has expired - account suspended",
		Body: "Dear {{name}},\n\n" +
			"Your {{license_type}} license expired on {{expired_at}}. Your provider account " +
			"has been suspended and is no longer visible to patients.\n\n" +
			"To reactivate your account, renew your license and upload the new document here:\n" +
			"{{reactivation_link}}\n\n" +
			"CareLink Compliance",
	},
	TemplateDocumentExpired: {
		ID:      TemplateDocumentExpired,
		Subject: "Your document \"{{document_type}}\" has expired",
		Body: "Dear {{name}},\n\n" +
			"Your verified document \"{{document_type}}\" expired on {{expired_at}} and has been " +
			"marked as expired. Please upload a current version here:\n" +
			"{{reactivation_link}}\n\n" +
			"CareLink Compliance",
	},
	TemplateComplianceSummary: {
		ID:      TemplateComplianceSummary,
		Subject: "Compliance sweep: {{count}} expired credential(s)",
		Body: "Hello,\n\n" +
			"The daily compliance sweep found {{count}} expired credential(s):\n\n" +
			"{{item_list}}\n" +
			"Affected providers were suspended and notified where contact details were available.\n\n" +
			"CareLink Compliance",
	},
}

// RenderTemplate substitutes {{key}} placeholders; unknown placeholders stay as-is
func RenderTemplate(templateID string, data map[string]string) (subject, body string, err error) {
	t, ok := messageTemplates[templateID]
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// NotificationService renders and fans out sweep notifications
type NotificationService struct {
	mailer Mailer
	config config.NotificationConfig
}

func NewNotificationService(mailer Mailer, cfg *config.Config) *NotificationService {
	return &NotificationService{
		mailer: mailer,
		config: cfg.Notification,
	}
}

// NotifyItemExpired sends the provider-facing notification for one expired item.
// Items without a resolvable email are skipped silently by the caller.
func (s *NotificationService) NotifyItemExpired(ctx context.Context, item dto.ExpiredItem) error {
	templateID := TemplateLicenseSuspended
	data := map[string]string{
		"name":              displayName(item.Name),
		"license_type":      item.TypeLabel,
		"expired_at":        item.ExpiredAt.Format("2 January 2006"),
		"reactivation_link": s.reactivationLink(),
	}

	if item.Kind == dto.KindDocument {
		templateID = TemplateDocumentExpired
		data["document_type"] = item.TypeLabel
	}

	subject, body, err := RenderTemplate(templateID, data)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, s.config.FromAddress, item.Email, subject, body); err != nil {
		return fmt.Errorf("notify %s %s failed: %w", item.Kind, item.ID, err)
	}
	return nil
}

// NotifyAdminSummary sends one summary per configured administrator address.
// Returns how many sends succeeded; individual failures are aggregated.
func (s *NotificationService) NotifyAdminSummary(ctx context.Context, items []dto.ExpiredItem) (int, error) {
	if len(items) == 0 || len(s.config.AdminEmails) == 0 {
		return 0, nil
	}

	subject, body, err := RenderTemplate(TemplateComplianceSummary, map[string]string{
		"count":     fmt.Sprintf("%d", len(items)),
		"item_list": formatItemList(items),
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	var sendErrs []error
	for _, admin := range s.config.AdminEmails {
		if err := s.mailer.Send(ctx, s.config.FromAddress, admin, subject, body); err != nil {
			sendErrs = append(sendErrs, fmt.Errorf("admin summary to %s failed: %w", admin, err))
			continue
		}
		sent++
	}

	return sent, errors.Join(sendErrs...)
}

func (s *NotificationService) reactivationLink() string {
	return strings.TrimRight(s.config.PortalBaseURL, "/") + "/provider/compliance/reactivation"
}

func displayName(name string) string {
	if name == "" {
		return "Provider"
	}
	return name
}

// formatItemList renders the admin summary table, one line per expired item
func formatItemList(items []dto.ExpiredItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [%s] %s — expired %s", i+1, item.Kind, item.TypeLabel,
			item.ExpiredAt.Format(time.DateOnly))
		if item.Email != "" {
			fmt.Fprintf(&b, " — %s", item.Email)
		}
		b.WriteString("\n")
	}
	return b.String()
}
