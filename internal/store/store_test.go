package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return &Store{pool: mock}, mock
}

func TestSanitizePhone(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 123-4567": "15551234567",
		"15551234567":       "15551234567",
		"":                  "",
		"ext":               "",
	}
	for in, want := range cases {
		if got := SanitizePhone(in); got != want {
			t.Errorf("SanitizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupTenantByLine(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()

	mock.ExpectQuery("SELECT business_id FROM phone_lines").
		WithArgs("15559876543").
		WillReturnRows(pgxmock.NewRows([]string{"business_id"}).AddRow(businessID))

	got, err := s.LookupTenantByLine(context.Background(), "+1 (555) 987-6543")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != businessID {
		t.Errorf("business id: got %s, want %s", got, businessID)
	}
}

func TestLookupTenantByLineEmptyNumber(t *testing.T) {
	s, _ := newMockStore(t)
	if _, err := s.LookupTenantByLine(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBusinessNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT id, name, phone").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	if _, err := s.GetBusiness(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveServices(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "business_id", "name", "description",
		"duration_minutes", "price_cents", "category", "requires_deposit",
		"deposit_amount_cents", "active", "display_order"}).
		AddRow(uuid.New(), businessID, "Gel Manicure", "", 45, 5500, "nails", false, 0, true, 1).
		AddRow(uuid.New(), businessID, "Deep Tissue Massage", "", 90, 12000, "massage", true, 2500, true, 2)
	mock.ExpectQuery("SELECT id, business_id, name").
		WithArgs(businessID).
		WillReturnRows(rows)

	services, err := s.ListActiveServices(context.Background(), businessID)
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(services))
	}
	if services[0].Name != "Gel Manicure" || services[0].DurationMinutes != 45 {
		t.Errorf("unexpected first service: %+v", services[0])
	}
}

func TestGetCustomerByPhoneMiss(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()
	mock.ExpectQuery("SELECT id, business_id, phone").
		WithArgs(businessID, "15551234567").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	c, err := s.GetCustomerByPhone(context.Background(), businessID, "+15551234567")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil customer, got %+v", c)
	}
}

func TestCreateCustomerSanitizesPhone(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()
	customerID := uuid.New()

	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(pgxmock.AnyArg(), businessID, "+1 (555) 123-4567", "15551234567", "Jane", "Doe", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(customerID))

	id, err := s.CreateCustomer(context.Background(), businessID, CustomerParams{
		Phone:     "+1 (555) 123-4567",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if id != customerID {
		t.Errorf("customer id: got %s, want %s", id, customerID)
	}
}

func TestCreateAppointment(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()
	customerID := uuid.New()
	serviceID := uuid.New()
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), businessID, customerID, &serviceID,
			"2026-09-02", "10:00", "10:45", StatusPending, "voice_ai", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if _, err := s.CreateAppointment(context.Background(), businessID, AppointmentParams{
		CustomerID: customerID,
		ServiceID:  &serviceID,
		Date:       date,
		StartTime:  "10:00",
		EndTime:    "10:45",
		Status:     StatusPending,
		Source:     "voice_ai",
	}); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
}

func TestBookedStartTimes(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT start_time FROM appointments").
		WithArgs(businessID, "2026-09-02", StatusCancelled).
		WillReturnRows(pgxmock.NewRows([]string{"start_time"}).
			AddRow("10:00").AddRow("14:00:00"))

	times, err := s.BookedStartTimes(context.Background(), businessID, date)
	if err != nil {
		t.Fatalf("booked start times: %v", err)
	}
	if len(times) != 2 || times[1] != "14:00:00" {
		t.Errorf("unexpected times: %v", times)
	}
}

func TestCancelAppointmentByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	businessID := uuid.New()
	apptID := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(businessID, apptID, StatusCancelled, "Cancellation reason: sick").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CancelAppointmentByID(context.Background(), businessID, apptID, "sick")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAppointmentsRequiresIdentifier(t *testing.T) {
	s, _ := newMockStore(t)
	if _, err := s.ListAppointments(context.Background(), uuid.New(), "", ""); err == nil {
		t.Error("expected error with no identifier")
	}
}
