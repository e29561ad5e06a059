package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/booking"
	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// SMSSender sends SMS messages to customers.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// BusinessSource looks up the tenant's profile for message branding.
type BusinessSource interface {
	GetBusiness(ctx context.Context, businessID uuid.UUID) (*store.Business, error)
}

// Service sends booking confirmations. Every method is best-effort: failures
// are logged and swallowed so delivery problems never surface to the caller.
type Service struct {
	email      EmailSender
	sms        SMSSender
	businesses BusinessSource
	logger     *logging.Logger
}

// NewService creates a notification service. Any sender may be nil; that
// channel is then skipped.
func NewService(email EmailSender, sms SMSSender, businesses BusinessSource, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		sms:        sms,
		businesses: businesses,
		logger:     logger,
	}
}

var _ booking.Notifier = (*Service)(nil)

// BookingConfirmed sends the customer a confirmation for a fresh booking.
func (s *Service) BookingConfirmed(ctx context.Context, tenantID uuid.UUID, details booking.ConfirmationDetails) {
	businessName := "our team"
	businessPhone := ""
	if s.businesses != nil {
		if business, err := s.businesses.GetBusiness(ctx, tenantID); err != nil {
			s.logger.Warn("notify: business lookup failed, sending generic confirmation",
				"tenant_id", tenantID, "error", err)
		} else {
			businessName = business.Name
			businessPhone = business.Phone
		}
	}

	when := details.Date
	if details.StartTime != "" {
		when = fmt.Sprintf("%s at %s", details.Date, details.StartTime)
	}

	if s.email != nil && details.CustomerEmail != "" {
		body := fmt.Sprintf(`Hi %s,

Your %s at %s is confirmed for %s.

Need to reschedule? Just give us a call%s.

See you soon!
%s`, details.CustomerName, details.ServiceName, businessName, when, phoneSuffix(businessPhone), businessName)

		msg := EmailMessage{
			To:      details.CustomerEmail,
			ToName:  details.CustomerName,
			Subject: fmt.Sprintf("Appointment confirmed - %s", businessName),
			Body:    body,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: confirmation email failed",
				"tenant_id", tenantID, "to", details.CustomerEmail, "error", err)
		}
	}

	if s.sms != nil && details.CustomerPhone != "" {
		body := fmt.Sprintf("%s: your %s is confirmed for %s. Questions? Call us%s.",
			businessName, details.ServiceName, when, phoneSuffix(businessPhone))
		if err := s.sms.SendSMS(ctx, details.CustomerPhone, body); err != nil {
			s.logger.Error("notify: confirmation SMS failed",
				"tenant_id", tenantID, "to", details.CustomerPhone, "error", err)
		}
	}
}

func phoneSuffix(phone string) string {
	if phone == "" {
		return ""
	}
	return " at " + phone
}

// SimpleSMSSender provides a simple SMS sending implementation backed by a
// provider-specific send function.
type SimpleSMSSender struct {
	sendFunc func(ctx context.Context, to, from, body string) error
	from     string
	logger   *logging.Logger
}

// NewSimpleSMSSender creates an SMS sender with a custom send function.
func NewSimpleSMSSender(from string, sendFunc func(ctx context.Context, to, from, body string) error, logger *logging.Logger) *SimpleSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SimpleSMSSender{
		sendFunc: sendFunc,
		from:     from,
		logger:   logger,
	}
}

// SendSMS sends an SMS message.
func (s *SimpleSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if s.sendFunc == nil {
		s.logger.Warn("notify: SMS sender not configured")
		return nil
	}
	return s.sendFunc(ctx, to, s.from, body)
}

// StubSMSSender is a no-op sender for testing.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Ensure interface compliance
var _ SMSSender = (*SimpleSMSSender)(nil)
var _ SMSSender = (*StubSMSSender)(nil)
