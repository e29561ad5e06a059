package store

import (
	"time"

	"github.com/google/uuid"
)

// Business is one tenant: a salon, spa or clinic.
type Business struct {
	ID               uuid.UUID
	Name             string
	Phone            string
	Email            string
	Website          string
	Address          string
	City             string
	State            string
	ZipCode          string
	SubscriptionTier string
	Timezone         string
	Active           bool
}

// FormattedAddress joins the address parts for display.
func (b *Business) FormattedAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{b.Address, b.City, b.State, b.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// Service is a bookable offering. Matched fuzzily by name during booking.
type Service struct {
	ID                 uuid.UUID
	BusinessID         uuid.UUID
	Name               string
	Description        string
	DurationMinutes    int
	PriceCents         int
	Category           string
	RequiresDeposit    bool
	DepositAmountCents int
	Active             bool
	DisplayOrder       int
}

// Staff is a service provider at a business.
type Staff struct {
	ID          uuid.UUID
	BusinessID  uuid.UUID
	FirstName   string
	LastName    string
	Role        string
	Specialties []string
	Active      bool
}

// DayHours is the opening window for one day of the week (0=Sunday).
// Open/Close hold "HH:MM" or "HH:MM:SS" as written by the dashboard.
type DayHours struct {
	DayOfWeek int
	Open      string
	Close     string
	Closed    bool
}

// Customer is keyed by phone number within a tenant; the store never creates
// a second row for the same (tenant, phone) pair.
type Customer struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	Phone      string
	FirstName  string
	LastName   string
	Email      string
}

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Appointment is a booked visit. ServiceID is nil when the requested service
// could not be matched against the catalog.
type Appointment struct {
	ID          uuid.UUID
	BusinessID  uuid.UUID
	CustomerID  uuid.UUID
	ServiceID   *uuid.UUID
	ServiceName string
	Date        time.Time
	StartTime   string
	EndTime     string
	Status      string
	Source      string
	Notes       string
}
