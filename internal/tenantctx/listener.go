package tenantctx

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// InvalidateChannel carries tenant ids whose context changed. The dashboard
// publishes here after CRUD mutations. Delivery is fire-and-forget, not a
// transactional guarantee; stale entries also age out via the TTL.
const InvalidateChannel = "tenant:invalidate"

// ClearAllPayload wipes the whole cache when published.
const ClearAllPayload = "*"

// Listener invalidates cache entries from redis pub/sub notifications.
type Listener struct {
	client *redis.Client
	cache  *Cache
	logger *logging.Logger
}

// NewListener creates a listener. Returns nil when redis is not configured;
// the cache then relies on TTL expiry alone.
func NewListener(client *redis.Client, cache *Cache, logger *logging.Logger) *Listener {
	if client == nil || cache == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Listener{client: client, cache: cache, logger: logger}
}

// Run subscribes and processes invalidations until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	sub := l.client.Subscribe(ctx, InvalidateChannel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	l.logger.Info("tenantctx: invalidation listener started", "channel", InvalidateChannel)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			l.handle(msg.Payload)
		}
	}
}

func (l *Listener) handle(payload string) {
	if payload == ClearAllPayload {
		l.cache.Clear()
		l.logger.Info("tenantctx: cache cleared")
		return
	}
	tenantID, err := uuid.Parse(payload)
	if err != nil {
		l.logger.Warn("tenantctx: ignoring malformed invalidation", "payload", payload)
		return
	}
	l.cache.Invalidate(tenantID)
	l.logger.Info("tenantctx: cache invalidated", "tenant_id", tenantID)
}

// PublishInvalidation notifies every process to drop a tenant's snapshot.
func PublishInvalidation(ctx context.Context, client *redis.Client, tenantID uuid.UUID) error {
	return client.Publish(ctx, InvalidateChannel, tenantID.String()).Err()
}
