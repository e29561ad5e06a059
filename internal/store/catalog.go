package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var phoneDigitsRe = regexp.MustCompile(`\d+`)

// SanitizePhone reduces a phone number to its digits so lookups tolerate
// formatting differences ("+1 (555) 123-4567" vs "15551234567").
func SanitizePhone(value string) string {
	if value == "" {
		return ""
	}
	return strings.Join(phoneDigitsRe.FindAllString(value, -1), "")
}

// LookupTenantByLine maps an inbound phone line to its owning tenant. This is
// the one query in the store that is not tenant-filtered; it produces the
// tenant id everything else filters by.
func (s *Store) LookupTenantByLine(ctx context.Context, number string) (uuid.UUID, error) {
	key := SanitizePhone(number)
	if key == "" {
		return uuid.Nil, ErrNotFound
	}
	var businessID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT business_id FROM phone_lines
		WHERE number_digits = $1 AND active
		LIMIT 1`, key).Scan(&businessID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: lookup tenant by line: %w", err)
	}
	return businessID, nil
}

// GetBusiness loads a tenant's profile row.
func (s *Store) GetBusiness(ctx context.Context, businessID uuid.UUID) (*Business, error) {
	var b Business
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, website, address, city, state, zip_code,
		       subscription_tier, timezone, active
		FROM businesses WHERE id = $1`, businessID).Scan(
		&b.ID, &b.Name, &b.Phone, &b.Email, &b.Website, &b.Address, &b.City,
		&b.State, &b.ZipCode, &b.SubscriptionTier, &b.Timezone, &b.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get business: %w", err)
	}
	return &b, nil
}

// ListActiveServices returns the tenant's bookable catalog in display order.
func (s *Store) ListActiveServices(ctx context.Context, businessID uuid.UUID) ([]Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, name, description, duration_minutes, price_cents,
		       category, requires_deposit, deposit_amount_cents, active, display_order
		FROM services
		WHERE business_id = $1 AND active
		ORDER BY display_order, name`, businessID)
	if err != nil {
		return nil, fmt.Errorf("store: list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.ID, &svc.BusinessID, &svc.Name, &svc.Description,
			&svc.DurationMinutes, &svc.PriceCents, &svc.Category, &svc.RequiresDeposit,
			&svc.DepositAmountCents, &svc.Active, &svc.DisplayOrder); err != nil {
			return nil, fmt.Errorf("store: scan service: %w", err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// ListActiveStaff returns the tenant's roster ordered by name.
func (s *Store) ListActiveStaff(ctx context.Context, businessID uuid.UUID) ([]Staff, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, first_name, last_name, role, specialties, active
		FROM staff
		WHERE business_id = $1 AND active
		ORDER BY first_name, last_name`, businessID)
	if err != nil {
		return nil, fmt.Errorf("store: list staff: %w", err)
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		var st Staff
		if err := rows.Scan(&st.ID, &st.BusinessID, &st.FirstName, &st.LastName,
			&st.Role, &st.Specialties, &st.Active); err != nil {
			return nil, fmt.Errorf("store: scan staff: %w", err)
		}
		if st.Specialties == nil {
			st.Specialties = []string{}
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListBusinessHours returns the weekly hours ordered Sunday through Saturday.
func (s *Store) ListBusinessHours(ctx context.Context, businessID uuid.UUID) ([]DayHours, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT day_of_week, COALESCE(open_time, ''), COALESCE(close_time, ''), is_closed
		FROM business_hours
		WHERE business_id = $1
		ORDER BY day_of_week`, businessID)
	if err != nil {
		return nil, fmt.Errorf("store: list hours: %w", err)
	}
	defer rows.Close()

	var out []DayHours
	for rows.Next() {
		var h DayHours
		if err := rows.Scan(&h.DayOfWeek, &h.Open, &h.Close, &h.Closed); err != nil {
			return nil, fmt.Errorf("store: scan hours: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
