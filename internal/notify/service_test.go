package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/booking"
	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

type recordingEmail struct {
	sent []EmailMessage
	err  error
}

func (r *recordingEmail) Send(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

type recordingSMS struct {
	to   []string
	body []string
	err  error
}

func (r *recordingSMS) SendSMS(_ context.Context, to, body string) error {
	r.to = append(r.to, to)
	r.body = append(r.body, body)
	return r.err
}

type fakeBusinesses struct {
	business *store.Business
	err      error
}

func (f *fakeBusinesses) GetBusiness(context.Context, uuid.UUID) (*store.Business, error) {
	return f.business, f.err
}

func confirmation() booking.ConfirmationDetails {
	return booking.ConfirmationDetails{
		CustomerName:  "Jane Doe",
		CustomerPhone: "5550102000",
		CustomerEmail: "jane@example.com",
		ServiceName:   "Gel Manicure",
		Date:          "Wednesday, September 2",
		StartTime:     "10:00 AM",
	}
}

func TestBookingConfirmedSendsBothChannels(t *testing.T) {
	email := &recordingEmail{}
	sms := &recordingSMS{}
	businesses := &fakeBusinesses{business: &store.Business{
		Name:  "Polished Nail Studio",
		Phone: "+15550109999",
	}}
	svc := NewService(email, sms, businesses, logging.NewWithWriter(io.Discard, "error"))

	svc.BookingConfirmed(context.Background(), uuid.New(), confirmation())

	if len(email.sent) != 1 {
		t.Fatalf("emails sent: got %d", len(email.sent))
	}
	if email.sent[0].To != "jane@example.com" {
		t.Errorf("email to: %q", email.sent[0].To)
	}
	if !strings.Contains(email.sent[0].Subject, "Polished Nail Studio") {
		t.Errorf("subject: %q", email.sent[0].Subject)
	}
	if !strings.Contains(email.sent[0].Body, "Gel Manicure") {
		t.Errorf("body: %q", email.sent[0].Body)
	}
	if len(sms.to) != 1 || sms.to[0] != "5550102000" {
		t.Fatalf("sms recipients: %v", sms.to)
	}
	if !strings.Contains(sms.body[0], "Wednesday, September 2 at 10:00 AM") {
		t.Errorf("sms body: %q", sms.body[0])
	}
}

func TestBookingConfirmedSkipsMissingChannels(t *testing.T) {
	email := &recordingEmail{}
	sms := &recordingSMS{}
	svc := NewService(email, sms, &fakeBusinesses{business: &store.Business{Name: "Polished"}},
		logging.NewWithWriter(io.Discard, "error"))

	details := confirmation()
	details.CustomerEmail = ""
	svc.BookingConfirmed(context.Background(), uuid.New(), details)

	if len(email.sent) != 0 {
		t.Errorf("no email expected without an address, got %d", len(email.sent))
	}
	if len(sms.to) != 1 {
		t.Errorf("sms still expected, got %d", len(sms.to))
	}
}

func TestBookingConfirmedSurvivesSenderFailure(t *testing.T) {
	email := &recordingEmail{err: errors.New("smtp down")}
	sms := &recordingSMS{err: errors.New("gateway down")}
	svc := NewService(email, sms, nil, logging.NewWithWriter(io.Discard, "error"))

	// Must not panic and must not return anything to fail the booking.
	svc.BookingConfirmed(context.Background(), uuid.New(), confirmation())
}

func TestBookingConfirmedGenericNameOnLookupFailure(t *testing.T) {
	sms := &recordingSMS{}
	svc := NewService(nil, sms, &fakeBusinesses{err: errors.New("db down")},
		logging.NewWithWriter(io.Discard, "error"))

	svc.BookingConfirmed(context.Background(), uuid.New(), confirmation())

	if len(sms.body) != 1 || !strings.HasPrefix(sms.body[0], "our team:") {
		t.Errorf("expected generic branding, got %v", sms.body)
	}
}

func TestSimpleSMSSender(t *testing.T) {
	var gotTo, gotFrom, gotBody string
	sender := NewSimpleSMSSender("+15550100000", func(_ context.Context, to, from, body string) error {
		gotTo, gotFrom, gotBody = to, from, body
		return nil
	}, logging.NewWithWriter(io.Discard, "error"))

	if err := sender.SendSMS(context.Background(), "+15550102000", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotTo != "+15550102000" || gotFrom != "+15550100000" || gotBody != "hello" {
		t.Errorf("got %q %q %q", gotTo, gotFrom, gotBody)
	}
}

func TestSimpleSMSSenderUnconfigured(t *testing.T) {
	sender := NewSimpleSMSSender("", nil, logging.NewWithWriter(io.Discard, "error"))
	if err := sender.SendSMS(context.Background(), "+15550102000", "hello"); err != nil {
		t.Fatalf("unconfigured sender must be a no-op, got %v", err)
	}
}
