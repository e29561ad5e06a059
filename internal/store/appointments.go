package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentParams are the fields needed to create an appointment row.
type AppointmentParams struct {
	CustomerID uuid.UUID
	ServiceID  *uuid.UUID
	Date       time.Time
	StartTime  string
	EndTime    string
	Status     string
	Source     string
	Notes      string
}

// CreateAppointment inserts an appointment for the tenant and returns its id.
func (s *Store) CreateAppointment(ctx context.Context, businessID uuid.UUID, params AppointmentParams) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, business_id, customer_id, service_id, date, start_time, end_time, status, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))`,
		id, businessID, params.CustomerID, params.ServiceID,
		params.Date.Format("2006-01-02"), params.StartTime, params.EndTime,
		params.Status, params.Source, params.Notes)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: create appointment: %w", err)
	}
	return id, nil
}

// BookedStartTimes returns the start times of the tenant's non-cancelled
// appointments on a date, as stored ("HH:MM" or "HH:MM:SS").
func (s *Store) BookedStartTimes(ctx context.Context, businessID uuid.UUID, date time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT start_time FROM appointments
		WHERE business_id = $1 AND date = $2 AND status <> $3`,
		businessID, date.Format("2006-01-02"), StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("store: booked start times: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("store: scan start time: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListAppointments returns the tenant's appointments for a customer identified
// by phone and/or email, newest date first. At least one identifier must be
// non-empty.
func (s *Store) ListAppointments(ctx context.Context, businessID uuid.UUID, phone, email string) ([]Appointment, error) {
	if phone == "" && email == "" {
		return nil, fmt.Errorf("store: list appointments: no customer identifier")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.business_id, a.customer_id, a.service_id,
		       COALESCE(s.name, ''), a.date, a.start_time, a.end_time,
		       a.status, a.source, COALESCE(a.notes, '')
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id AND c.business_id = a.business_id
		LEFT JOIN services s ON s.id = a.service_id AND s.business_id = a.business_id
		WHERE a.business_id = $1
		  AND (($2 <> '' AND c.phone_digits = $2) OR ($3 <> '' AND c.email = $3))
		ORDER BY a.date DESC, a.start_time DESC`,
		businessID, SanitizePhone(phone), email)
	if err != nil {
		return nil, fmt.Errorf("store: list appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.BusinessID, &a.CustomerID, &a.ServiceID,
			&a.ServiceName, &a.Date, &a.StartTime, &a.EndTime, &a.Status,
			&a.Source, &a.Notes); err != nil {
			return nil, fmt.Errorf("store: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CancelAppointmentByID marks the tenant's appointment cancelled and records
// the reason as an internal note. ErrNotFound when no row matched.
func (s *Store) CancelAppointmentByID(ctx context.Context, businessID, appointmentID uuid.UUID, reason string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $3,
		    notes = CONCAT_WS(E'\n', notes, NULLIF($4, '')),
		    updated_at = now()
		WHERE business_id = $1 AND id = $2 AND status <> $3`,
		businessID, appointmentID, StatusCancelled, cancellationNote(reason))
	if err != nil {
		return fmt.Errorf("store: cancel appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelAppointmentByDetails cancels the tenant's appointment matching
// (date, start time) for the customer identified by phone and/or email.
func (s *Store) CancelAppointmentByDetails(ctx context.Context, businessID uuid.UUID, date time.Time, startTime, phone, email, reason string) error {
	if phone == "" && email == "" {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments a
		SET status = $4,
		    notes = CONCAT_WS(E'\n', a.notes, NULLIF($5, '')),
		    updated_at = now()
		FROM customers c
		WHERE c.id = a.customer_id AND c.business_id = a.business_id
		  AND a.business_id = $1 AND a.date = $2
		  AND split_part(a.start_time, ':', 1) || ':' || split_part(a.start_time, ':', 2)
		      = split_part($3, ':', 1) || ':' || split_part($3, ':', 2)
		  AND a.status <> $4
		  AND (($6 <> '' AND c.phone_digits = $6) OR ($7 <> '' AND c.email = $7))`,
		businessID, date.Format("2006-01-02"), startTime, StatusCancelled,
		cancellationNote(reason), SanitizePhone(phone), email)
	if err != nil {
		return fmt.Errorf("store: cancel appointment by details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func cancellationNote(reason string) string {
	if reason == "" {
		return ""
	}
	return "Cancellation reason: " + reason
}
