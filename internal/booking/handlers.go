package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/internal/tenantctx"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// Store is the persistence surface the handlers need.
type Store interface {
	GetCustomerByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*store.Customer, error)
	CreateCustomer(ctx context.Context, businessID uuid.UUID, params store.CustomerParams) (uuid.UUID, error)
	CreateAppointment(ctx context.Context, businessID uuid.UUID, params store.AppointmentParams) (uuid.UUID, error)
	BookedStartTimes(ctx context.Context, businessID uuid.UUID, date time.Time) ([]string, error)
	ListAppointments(ctx context.Context, businessID uuid.UUID, phone, email string) ([]store.Appointment, error)
	CancelAppointmentByID(ctx context.Context, businessID, appointmentID uuid.UUID, reason string) error
	CancelAppointmentByDetails(ctx context.Context, businessID uuid.UUID, date time.Time, startTime, phone, email, reason string) error
}

// ContextSource provides cached tenant context.
type ContextSource interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*tenantctx.Context, error)
}

// ConfirmationDetails describe a freshly booked appointment.
type ConfirmationDetails struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	ServiceName   string
	Date          string
	StartTime     string
}

// Notifier sends booking confirmations. Failures are the notifier's problem;
// they never affect the booking result.
type Notifier interface {
	BookingConfirmed(ctx context.Context, tenantID uuid.UUID, details ConfirmationDetails)
}

// Handlers executes booking intents against tenant-scoped data.
type Handlers struct {
	store    Store
	tenantCtx ContextSource
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

// Config configures Handlers.
type Config struct {
	Store     Store
	TenantCtx ContextSource
	Notifier  Notifier
	Logger    *logging.Logger
}

// NewHandlers creates booking handlers.
func NewHandlers(cfg Config) *Handlers {
	if cfg.Store == nil {
		panic("booking: store required")
	}
	if cfg.TenantCtx == nil {
		panic("booking: tenant context source required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handlers{
		store:     cfg.Store,
		tenantCtx: cfg.TenantCtx,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

func (h *Handlers) storeFailure(tenantID uuid.UUID, op string, err error) Result {
	h.logger.Error("booking: "+op+" failed", "tenant_id", tenantID, "error", err)
	return Result{
		Message: apologyMessage,
		Success: boolPtr(false),
		Error:   errTagStore,
	}
}

func validationFailure(prompt string) Result {
	return Result{
		Message: prompt,
		Success: boolPtr(false),
		Error:   errTagValidation,
	}
}
