package booking

import (
	"strings"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
)

// MatchService resolves a caller's service phrasing ("gel_manicure",
// "Gel Manicure", "manicure") against the tenant's catalog. Matching is
// case-insensitive substring containment in either direction on humanized
// names; the first hit wins, so catalog display order decides ties.
// Returns nil when nothing matches; callers fall back to a generic booking.
func MatchService(services []store.Service, query string) *store.Service {
	key := normalizeServiceName(query)
	if key == "" {
		return nil
	}
	for i := range services {
		name := normalizeServiceName(services[i].Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, key) || strings.Contains(key, name) {
			return &services[i]
		}
	}
	// Second pass on category ("nails" → first nail service).
	for i := range services {
		category := normalizeServiceName(services[i].Category)
		if category == "" {
			continue
		}
		if strings.Contains(category, key) || strings.Contains(key, category) {
			return &services[i]
		}
	}
	return nil
}

// normalizeServiceName lowercases and humanizes a service identifier:
// "Gel_Manicure" and "gel-manicure" both become "gel manicure".
func normalizeServiceName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, "-", " ")
	return strings.Join(strings.Fields(value), " ")
}

// humanizeServiceType renders a function-call service identifier for speech
// when no catalog match exists ("gel_manicure" → "gel manicure").
func humanizeServiceType(value string) string {
	return normalizeServiceName(value)
}
