package tenancy

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestTenantIDRoundTrip(t *testing.T) {
	tenantID := uuid.New()
	ctx := WithTenantID(context.Background(), tenantID)

	got, ok := TenantIDFromContext(ctx)
	if !ok {
		t.Fatal("expected tenant id in context")
	}
	if got != tenantID {
		t.Errorf("tenant id: got %s, want %s", got, tenantID)
	}
}

func TestTenantIDMissing(t *testing.T) {
	if _, ok := TenantIDFromContext(context.Background()); ok {
		t.Error("expected no tenant id in empty context")
	}
}

func TestTenantIDNilRejected(t *testing.T) {
	ctx := WithTenantID(context.Background(), uuid.Nil)
	if _, ok := TenantIDFromContext(ctx); ok {
		t.Error("uuid.Nil should not count as a resolved tenant")
	}
}
