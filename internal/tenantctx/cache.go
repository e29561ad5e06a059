// Package tenantctx caches per-tenant business context (profile, catalog,
// roster, hours) so webhook turns don't refetch it from Postgres every time.
package tenantctx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// CatalogStore is the store subset the cache fetches from.
type CatalogStore interface {
	GetBusiness(ctx context.Context, businessID uuid.UUID) (*store.Business, error)
	ListActiveServices(ctx context.Context, businessID uuid.UUID) ([]store.Service, error)
	ListActiveStaff(ctx context.Context, businessID uuid.UUID) ([]store.Staff, error)
	ListBusinessHours(ctx context.Context, businessID uuid.UUID) ([]store.DayHours, error)
}

// Context is an immutable snapshot of one tenant's live data. Entries are
// replaced wholesale on refresh, never mutated in place.
type Context struct {
	Business  *store.Business
	Services  []store.Service
	Staff     []store.Staff
	Hours     []store.DayHours
	FetchedAt time.Time
}

// DefaultTTL is the freshness window when none is configured.
const DefaultTTL = 5 * time.Minute

// Cache holds tenant context snapshots with a bounded TTL. Constructed once
// at process start and passed to the dispatcher; not a package global.
type Cache struct {
	store  CatalogStore
	ttl    time.Duration
	logger *logging.Logger
	tracer trace.Tracer
	now    func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]*Context
}

// NewCache creates a cache. ttl <= 0 uses DefaultTTL.
func NewCache(catalog CatalogStore, ttl time.Duration, logger *logging.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{
		store:   catalog,
		ttl:     ttl,
		logger:  logger,
		tracer:  otel.Tracer("frontdesk.internal.tenantctx"),
		now:     time.Now,
		entries: map[uuid.UUID]*Context{},
	}
}

// Get returns the tenant's context, refetching when the cached snapshot is
// missing or older than the freshness window. A fetch failure returns
// (nil, err); callers degrade gracefully rather than blocking the response.
func (c *Cache) Get(ctx context.Context, tenantID uuid.UUID) (*Context, error) {
	c.mu.RLock()
	entry := c.entries[tenantID]
	c.mu.RUnlock()
	if entry != nil && c.now().Sub(entry.FetchedAt) < c.ttl {
		return entry, nil
	}

	fresh, err := c.fetch(ctx, tenantID)
	if err != nil {
		c.logger.Warn("tenantctx: fetch failed", "tenant_id", tenantID, "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.entries[tenantID] = fresh
	c.mu.Unlock()
	return fresh, nil
}

// fetch loads the four context reads concurrently; they are independent.
func (c *Cache) fetch(ctx context.Context, tenantID uuid.UUID) (*Context, error) {
	ctx, span := c.tracer.Start(ctx, "tenantctx.fetch")
	defer span.End()

	snapshot := &Context{FetchedAt: c.now()}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	wg.Add(4)
	go func() {
		defer wg.Done()
		snapshot.Business, errs[0] = c.store.GetBusiness(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		snapshot.Services, errs[1] = c.store.ListActiveServices(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		snapshot.Staff, errs[2] = c.store.ListActiveStaff(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		snapshot.Hours, errs[3] = c.store.ListBusinessHours(ctx, tenantID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("tenantctx: fetch context: %w", err)
		}
	}
	return snapshot, nil
}

// Invalidate drops one tenant's snapshot. Called when dashboard mutations
// change tenant data.
func (c *Cache) Invalidate(tenantID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}

// Clear drops every snapshot.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = map[uuid.UUID]*Context{}
	c.mu.Unlock()
}
