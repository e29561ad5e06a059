// Package personalize rewrites assistant-facing text with tenant data so one
// shared prompt and one shared set of canned replies serve every business.
package personalize

import (
	"fmt"
	"strings"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
)

var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// FormatServices renders the service catalog as a spoken-friendly bullet
// list. Price and deposit are mentioned only when set.
func FormatServices(services []store.Service) string {
	if len(services) == 0 {
		return "Please ask about our available services."
	}
	lines := make([]string, 0, len(services))
	for _, s := range services {
		line := fmt.Sprintf("• %s - %d min", s.Name, s.DurationMinutes)
		if s.PriceCents > 0 {
			line += fmt.Sprintf(" - $%.2f", float64(s.PriceCents)/100)
		}
		if s.RequiresDeposit && s.DepositAmountCents > 0 {
			line += fmt.Sprintf(" (deposit $%.2f)", float64(s.DepositAmountCents)/100)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatStaff renders the provider roster with specialties when known.
func FormatStaff(staff []store.Staff) string {
	if len(staff) == 0 {
		return "Our friendly team is here to help."
	}
	lines := make([]string, 0, len(staff))
	for _, s := range staff {
		name := strings.TrimSpace(s.FirstName + " " + s.LastName)
		line := "• " + name
		if len(s.Specialties) > 0 {
			line += fmt.Sprintf(" (Specializes in: %s)", strings.Join(s.Specialties, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatHours renders the weekly schedule Sunday through Saturday. Days with
// no row, or marked closed, read as "Closed".
func FormatHours(hours []store.DayHours) string {
	if len(hours) == 0 {
		return "Please call us for our current hours."
	}
	byDay := make(map[int]store.DayHours, len(hours))
	for _, h := range hours {
		byDay[h.DayOfWeek] = h
	}
	lines := make([]string, 0, 7)
	for day := 0; day < 7; day++ {
		h, ok := byDay[day]
		if !ok || h.Closed || h.Open == "" || h.Close == "" {
			lines = append(lines, dayNames[day]+": Closed")
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s - %s", dayNames[day], h.Open, h.Close))
	}
	return strings.Join(lines, "\n")
}
