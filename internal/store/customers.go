package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerParams are the fields needed to create a customer row.
type CustomerParams struct {
	Phone     string
	FirstName string
	LastName  string
	Email     string
}

// GetCustomerByPhone finds the tenant's customer with the given phone number.
// Returns (nil, nil) when no row exists so callers can get-or-create.
func (s *Store) GetCustomerByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, business_id, phone, first_name, last_name, COALESCE(email, '')
		FROM customers
		WHERE business_id = $1 AND phone_digits = $2
		LIMIT 1`, businessID, SanitizePhone(phone)).Scan(
		&c.ID, &c.BusinessID, &c.Phone, &c.FirstName, &c.LastName, &c.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get customer by phone: %w", err)
	}
	return &c, nil
}

// CreateCustomer inserts a customer row for the tenant. The unique index on
// (business_id, phone_digits) guarantees the dedup invariant even if two
// requests race; ON CONFLICT returns the surviving row's id.
func (s *Store) CreateCustomer(ctx context.Context, businessID uuid.UUID, params CustomerParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (id, business_id, phone, phone_digits, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		ON CONFLICT (business_id, phone_digits)
		DO UPDATE SET updated_at = now()
		RETURNING id`,
		uuid.New(), businessID, params.Phone, SanitizePhone(params.Phone),
		params.FirstName, params.LastName, params.Email).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: create customer: %w", err)
	}
	return id, nil
}
