package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
)

// defaultDurationMinutes is used when the requested service cannot be matched
// against the tenant's catalog.
const defaultDurationMinutes = 60

// BookAppointment validates the request, gets-or-creates the customer by
// phone, matches the service, derives the end time and inserts the
// appointment. All failures come back as speakable results.
func (h *Handlers) BookAppointment(ctx context.Context, args BookArgs, tenantID uuid.UUID) Result {
	if prompt, ok := validateBookArgs(args); !ok {
		return validationFailure(prompt)
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(args.Date))
	if err != nil {
		return validationFailure("I didn't catch the date. What day would you like to come in?")
	}
	startMinutes, ok := parseClockMinutes(args.StartTime)
	if !ok {
		return validationFailure("I didn't catch the time. What time would you like?")
	}

	customerID, err := h.getOrCreateCustomer(ctx, tenantID, args)
	if err != nil {
		return h.storeFailure(tenantID, "customer upsert", err)
	}

	// Service matching is best-effort; an unmatched service books a generic
	// one-hour visit.
	var matched *store.Service
	if strings.TrimSpace(args.ServiceType) != "" {
		tc, err := h.tenantCtx.Get(ctx, tenantID)
		if err != nil {
			h.logger.Warn("booking: context unavailable for service match",
				"tenant_id", tenantID, "error", err)
		} else {
			matched = MatchService(tc.Services, args.ServiceType)
		}
	}

	duration := defaultDurationMinutes
	var serviceID *uuid.UUID
	serviceName := "appointment"
	if matched != nil {
		duration = matched.DurationMinutes
		if duration <= 0 {
			duration = defaultDurationMinutes
		}
		id := matched.ID
		serviceID = &id
		serviceName = matched.Name
	} else if args.ServiceType != "" {
		serviceName = humanizeServiceType(args.ServiceType)
	}

	startClock := formatClockMinutes(startMinutes)
	endClock := formatClockMinutes(startMinutes + duration)

	appointmentID, err := h.store.CreateAppointment(ctx, tenantID, store.AppointmentParams{
		CustomerID: customerID,
		ServiceID:  serviceID,
		Date:       date,
		StartTime:  startClock,
		EndTime:    endClock,
		Status:     store.StatusPending,
		Source:     "voice_ai",
	})
	if err != nil {
		return h.storeFailure(tenantID, "appointment insert", err)
	}

	h.sendConfirmation(ctx, tenantID, args, serviceName, date)

	message := fmt.Sprintf("You're all set! I've booked your %s for %s at %s",
		serviceName, date.Format("Monday, January 2"), spokenTime(startClock))
	if matched != nil && matched.PriceCents > 0 {
		message += fmt.Sprintf(". The price is $%.2f", float64(matched.PriceCents)/100)
	}
	message += ". We look forward to seeing you at {business_name}!"

	return Result{
		Message:       message,
		Success:       boolPtr(true),
		AppointmentID: appointmentID.String(),
	}
}

func validateBookArgs(args BookArgs) (string, bool) {
	switch {
	case strings.TrimSpace(args.CustomerName) == "":
		return "Could I get your name to finish the booking?", false
	case strings.TrimSpace(args.CustomerPhone) == "":
		return "Could I get a phone number to finish the booking?", false
	case strings.TrimSpace(args.Date) == "":
		return "What day would you like to come in?", false
	case strings.TrimSpace(args.StartTime) == "":
		return "What time would you like?", false
	}
	return "", true
}

// getOrCreateCustomer reuses the tenant's existing customer row for the phone
// number; a new row is created only when none exists.
func (h *Handlers) getOrCreateCustomer(ctx context.Context, tenantID uuid.UUID, args BookArgs) (uuid.UUID, error) {
	existing, err := h.store.GetCustomerByPhone(ctx, tenantID, args.CustomerPhone)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	first, last := splitName(args.CustomerName)
	return h.store.CreateCustomer(ctx, tenantID, store.CustomerParams{
		Phone:     strings.TrimSpace(args.CustomerPhone),
		FirstName: first,
		LastName:  last,
		Email:     strings.TrimSpace(args.CustomerEmail),
	})
}

func (h *Handlers) sendConfirmation(ctx context.Context, tenantID uuid.UUID, args BookArgs, serviceName string, date time.Time) {
	if h.notifier == nil {
		return
	}
	details := ConfirmationDetails{
		CustomerName:  args.CustomerName,
		CustomerPhone: args.CustomerPhone,
		CustomerEmail: args.CustomerEmail,
		ServiceName:   serviceName,
		Date:          date.Format("Monday, January 2"),
		StartTime:     spokenTime(normalizeClock(args.StartTime)),
	}
	// Fire-and-forget: the webhook response must not wait on delivery.
	go h.notifier.BookingConfirmed(context.WithoutCancel(ctx), tenantID, details)
}

// splitName divides a spoken full name into first and last parts.
func splitName(full string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(full))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// parseClockMinutes converts "HH:MM" or "HH:MM:SS" to minutes since midnight.
func parseClockMinutes(clock string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 3)
	if len(parts) < 2 {
		return 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func formatClockMinutes(total int) string {
	total %= 24 * 60
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
