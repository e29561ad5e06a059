package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

type fakeTenantStore struct {
	lineTenant uuid.UUID
	lineErr    error
	business   *store.Business
	businessErr error
}

func (f *fakeTenantStore) LookupTenantByLine(_ context.Context, _ string) (uuid.UUID, error) {
	return f.lineTenant, f.lineErr
}

func (f *fakeTenantStore) GetBusiness(_ context.Context, _ uuid.UUID) (*store.Business, error) {
	return f.business, f.businessErr
}

func TestResolveMappedLine(t *testing.T) {
	tenantID := uuid.New()
	r, err := NewResolver(&fakeTenantStore{
		lineTenant: tenantID,
		business:   &store.Business{ID: tenantID, Active: true},
	}, "", logging.Default())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	got, err := r.Resolve(context.Background(), "+15559876543")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != tenantID {
		t.Errorf("tenant: got %s, want %s", got, tenantID)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	defaultID := uuid.New()
	r, err := NewResolver(&fakeTenantStore{
		lineErr:  store.ErrNotFound,
		business: &store.Business{ID: defaultID, Active: true},
	}, defaultID.String(), logging.Default())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	got, err := r.Resolve(context.Background(), "+15550000000")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != defaultID {
		t.Errorf("tenant: got %s, want default %s", got, defaultID)
	}
}

func TestResolveNoMappingNoDefault(t *testing.T) {
	r, err := NewResolver(&fakeTenantStore{lineErr: store.ErrNotFound}, "", logging.Default())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if _, err := r.Resolve(context.Background(), "+15550000000"); !errors.Is(err, ErrTenantNotResolved) {
		t.Errorf("expected ErrTenantNotResolved, got %v", err)
	}
}

func TestResolveInactiveTenantRejected(t *testing.T) {
	tenantID := uuid.New()
	r, err := NewResolver(&fakeTenantStore{
		lineTenant: tenantID,
		business:   &store.Business{ID: tenantID, Active: false},
	}, "", logging.Default())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if _, err := r.Resolve(context.Background(), "+15559876543"); !errors.Is(err, ErrTenantNotResolved) {
		t.Errorf("expected ErrTenantNotResolved for inactive tenant, got %v", err)
	}
}

func TestResolveMissingBusinessRow(t *testing.T) {
	r, err := NewResolver(&fakeTenantStore{
		lineTenant:  uuid.New(),
		businessErr: store.ErrNotFound,
	}, "", logging.Default())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if _, err := r.Resolve(context.Background(), "+15559876543"); !errors.Is(err, ErrTenantNotResolved) {
		t.Errorf("expected ErrTenantNotResolved for missing business, got %v", err)
	}
}

func TestNewResolverRejectsBadDefault(t *testing.T) {
	if _, err := NewResolver(&fakeTenantStore{}, "not-a-uuid", nil); err == nil {
		t.Error("expected error for malformed default tenant id")
	}
}
