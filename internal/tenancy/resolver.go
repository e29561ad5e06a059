package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// ErrTenantNotResolved means no active tenant owns the inbound event. Callers
// must reject the event rather than proceed with partial context.
var ErrTenantNotResolved = errors.New("tenancy: tenant not resolved")

// TenantStore is the store subset the resolver needs.
type TenantStore interface {
	LookupTenantByLine(ctx context.Context, number string) (uuid.UUID, error)
	GetBusiness(ctx context.Context, businessID uuid.UUID) (*store.Business, error)
}

// Resolver maps an inbound call's line number to the owning tenant.
type Resolver struct {
	store TenantStore
	// defaultTenant backs single-tenant deployments where no phone-line
	// mapping exists yet. uuid.Nil disables the fallback.
	defaultTenant uuid.UUID
	logger        *logging.Logger
}

// NewResolver creates a resolver. defaultTenantID may be empty.
func NewResolver(tenantStore TenantStore, defaultTenantID string, logger *logging.Logger) (*Resolver, error) {
	if tenantStore == nil {
		return nil, errors.New("tenancy: tenant store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Resolver{store: tenantStore, logger: logger}
	if defaultTenantID != "" {
		id, err := uuid.Parse(defaultTenantID)
		if err != nil {
			return nil, fmt.Errorf("tenancy: invalid default tenant id %q: %w", defaultTenantID, err)
		}
		r.defaultTenant = id
	}
	return r, nil
}

// Resolve returns the tenant that owns the given line number. A miss falls
// back to the configured default tenant; either way the business row must
// exist and be active before the id is returned.
func (r *Resolver) Resolve(ctx context.Context, lineNumber string) (uuid.UUID, error) {
	tenantID, err := r.store.LookupTenantByLine(ctx, lineNumber)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		if r.defaultTenant == uuid.Nil {
			r.logger.Warn("tenancy: no tenant for line and no default configured", "line", lineNumber)
			return uuid.Nil, ErrTenantNotResolved
		}
		// Known limitation for single-tenant deployments, not a silent bug.
		r.logger.Warn("tenancy: falling back to default tenant",
			"line", lineNumber, "tenant_id", r.defaultTenant)
		tenantID = r.defaultTenant
	default:
		return uuid.Nil, fmt.Errorf("tenancy: lookup line: %w", err)
	}

	business, err := r.store.GetBusiness(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.Error("tenancy: resolved tenant does not exist", "tenant_id", tenantID)
		return uuid.Nil, ErrTenantNotResolved
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("tenancy: verify tenant: %w", err)
	}
	if !business.Active {
		r.logger.Warn("tenancy: resolved tenant is inactive", "tenant_id", tenantID)
		return uuid.Nil, ErrTenantNotResolved
	}
	return tenantID, nil
}
