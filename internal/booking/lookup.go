package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
)

// Date range filters for CheckAppointments.
const (
	RangeUpcoming = "upcoming"
	RangeToday    = "today"
	RangePast     = "past"
)

// CheckAppointments lists the customer's appointments, filtered in memory by
// the requested date range.
func (h *Handlers) CheckAppointments(ctx context.Context, args LookupArgs, tenantID uuid.UUID) Result {
	phone := strings.TrimSpace(args.CustomerPhone)
	email := strings.TrimSpace(args.CustomerEmail)
	if phone == "" && email == "" {
		return validationFailure("Could I get the phone number or email the appointment was booked under?")
	}

	appointments, err := h.store.ListAppointments(ctx, tenantID, phone, email)
	if err != nil {
		return h.storeFailure(tenantID, "appointment lookup", err)
	}

	today := h.now().Format("2006-01-02")
	filtered := filterByRange(appointments, strings.ToLower(strings.TrimSpace(args.DateRange)), today)

	summaries := make([]AppointmentSummary, 0, len(filtered))
	for _, a := range filtered {
		service := a.ServiceName
		if service == "" {
			service = "appointment"
		}
		summaries = append(summaries, AppointmentSummary{
			ID:        a.ID.String(),
			Service:   service,
			Date:      a.Date.Format("2006-01-02"),
			StartTime: normalizeClock(a.StartTime),
			EndTime:   normalizeClock(a.EndTime),
			Status:    a.Status,
		})
	}

	return Result{
		Message:      lookupMessage(summaries),
		Appointments: summaries,
		Count:        len(summaries),
	}
}

func filterByRange(appointments []store.Appointment, dateRange, today string) []store.Appointment {
	out := make([]store.Appointment, 0, len(appointments))
	for _, a := range appointments {
		date := a.Date.Format("2006-01-02")
		switch dateRange {
		case RangeUpcoming:
			if date >= today && a.Status != store.StatusCancelled {
				out = append(out, a)
			}
		case RangeToday:
			if date == today {
				out = append(out, a)
			}
		case RangePast:
			if date < today {
				out = append(out, a)
			}
		default:
			out = append(out, a)
		}
	}
	return out
}

func lookupMessage(summaries []AppointmentSummary) string {
	switch len(summaries) {
	case 0:
		return "I don't see any appointments on file for you. Would you like to book one?"
	case 1:
		s := summaries[0]
		date, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			return fmt.Sprintf("You have one appointment: %s on %s.", s.Service, s.Date)
		}
		return fmt.Sprintf("You have one appointment: %s on %s at %s.",
			s.Service, date.Format("Monday, January 2"), spokenTime(s.StartTime))
	default:
		return fmt.Sprintf("You have %d appointments on file. Would you like the details?", len(summaries))
	}
}
