package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
)

const cancelFailureMessage = "I'm sorry, I wasn't able to cancel that appointment. " +
	"Please call us directly and we'll take care of it."

// CancelAppointment cancels by booking id when one was given, otherwise by
// date and time plus whichever contact detail the caller supplied.
func (h *Handlers) CancelAppointment(ctx context.Context, args CancelArgs, tenantID uuid.UUID) Result {
	var err error
	if strings.TrimSpace(args.BookingID) != "" {
		err = h.cancelByID(ctx, args, tenantID)
	} else {
		err = h.cancelByDetails(ctx, args, tenantID)
	}

	switch {
	case err == nil:
		return Result{
			Message: "Your appointment has been cancelled. We hope to see you again soon!",
			Success: boolPtr(true),
		}
	case errors.Is(err, store.ErrNotFound):
		return Result{
			Message: cancelFailureMessage,
			Success: boolPtr(false),
		}
	default:
		h.logger.Error("booking: cancellation failed", "tenant_id", tenantID, "error", err)
		return Result{
			Message: cancelFailureMessage,
			Success: boolPtr(false),
			Error:   errTagStore,
		}
	}
}

func (h *Handlers) cancelByID(ctx context.Context, args CancelArgs, tenantID uuid.UUID) error {
	appointmentID, err := uuid.Parse(strings.TrimSpace(args.BookingID))
	if err != nil {
		return store.ErrNotFound
	}
	return h.store.CancelAppointmentByID(ctx, tenantID, appointmentID, args.Reason)
}

func (h *Handlers) cancelByDetails(ctx context.Context, args CancelArgs, tenantID uuid.UUID) error {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(args.Date))
	if err != nil {
		return store.ErrNotFound
	}
	startTime := normalizeClock(args.StartTime)
	if startTime == "" {
		return store.ErrNotFound
	}
	return h.store.CancelAppointmentByDetails(ctx, tenantID, date, startTime,
		strings.TrimSpace(args.CustomerPhone), strings.TrimSpace(args.CustomerEmail), args.Reason)
}
