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

// maxOfferedSlots caps how many openings the assistant reads out loud.
const maxOfferedSlots = 5

// CheckAvailability enumerates open hourly slots on the preferred date,
// excluding times already taken by non-cancelled appointments.
func (h *Handlers) CheckAvailability(ctx context.Context, args AvailabilityArgs, tenantID uuid.UUID) Result {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(args.PreferredDate))
	if err != nil {
		return Result{
			Message:   "What date would you like to come in? For example, next Wednesday.",
			Available: boolPtr(false),
		}
	}
	dayName := date.Weekday().String()

	tc, err := h.tenantCtx.Get(ctx, tenantID)
	if err != nil {
		return h.storeFailure(tenantID, "availability context fetch", err)
	}

	hours := dayHoursFor(tc.Hours, int(date.Weekday()))
	if hours == nil || hours.Closed || hours.Open == "" || hours.Close == "" {
		return Result{
			Message:   fmt.Sprintf("I'm sorry, we're closed on %ss. Is there another day that works for you?", dayName),
			Available: boolPtr(false),
		}
	}

	openHour, okOpen := parseHour(hours.Open)
	closeHour, okClose := parseHour(hours.Close)
	if !okOpen || !okClose || closeHour <= openHour {
		return Result{
			Message:   fmt.Sprintf("I'm sorry, I don't have our %s hours on file. Is there another day that works for you?", dayName),
			Available: boolPtr(false),
		}
	}

	booked, err := h.store.BookedStartTimes(ctx, tenantID, date)
	if err != nil {
		return h.storeFailure(tenantID, "availability lookup", err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[normalizeClock(t)] = struct{}{}
	}

	// The final hour is excluded so a full appointment fits before close.
	var open []string
	for hour := openHour; hour < closeHour; hour++ {
		slot := fmt.Sprintf("%02d:00", hour)
		if _, busy := taken[slot]; busy {
			continue
		}
		open = append(open, slot)
	}

	if len(open) == 0 {
		return Result{
			Message:   fmt.Sprintf("I'm sorry, we're fully booked on %s. Would another day work?", dayName),
			Available: boolPtr(false),
		}
	}

	offered := open
	if len(offered) > maxOfferedSlots {
		offered = offered[:maxOfferedSlots]
	}
	spoken := make([]string, len(offered))
	for i, slot := range offered {
		spoken[i] = spokenTime(slot)
	}

	return Result{
		Message: fmt.Sprintf("We have %d openings on %s, including %s. Which time works best?",
			len(open), dayName, strings.Join(spoken, ", ")),
		Available: boolPtr(true),
		Slots:     offered,
		SlotCount: len(open),
	}
}

func dayHoursFor(hours []store.DayHours, weekday int) *store.DayHours {
	for i := range hours {
		if hours[i].DayOfWeek == weekday {
			return &hours[i]
		}
	}
	return nil
}

// parseHour extracts the hour from "HH:MM" or "HH:MM:SS".
func parseHour(clock string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// normalizeClock reduces "HH:MM", "HH:MM:SS" or "9:00" to "HH:MM" for
// comparisons.
func normalizeClock(clock string) string {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 3)
	if len(parts) < 2 {
		return strings.TrimSpace(clock)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return strings.TrimSpace(clock)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// spokenTime renders "14:00" as "2:00 PM" for speech.
func spokenTime(clock string) string {
	t, err := time.Parse("15:04", normalizeClock(clock))
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
