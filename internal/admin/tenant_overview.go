// Package admin exposes privileged dashboard endpoints. These sit behind the
// AdminJWT middleware and read through database/sql rather than the request
// path's pgx pool; the dashboard tolerates slightly stale data.
package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/sablehq/frontdesk-ai-platform/internal/tenantctx"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// Handler serves tenant administration endpoints.
type Handler struct {
	db     *sql.DB
	redis  *redis.Client
	logger *logging.Logger
}

// Config configures the admin Handler.
type Config struct {
	DB     *sql.DB
	Redis  *redis.Client
	Logger *logging.Logger
}

// NewHandler creates the admin handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handler{db: cfg.DB, redis: cfg.Redis, logger: cfg.Logger}
}

// TenantOverview is the dashboard's at-a-glance view of one tenant.
type TenantOverview struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	SubscriptionTier string          `json:"subscription_tier"`
	Active           bool            `json:"active"`
	ServiceCount     int             `json:"service_count"`
	UpcomingCount    int             `json:"upcoming_appointments"`
	Staff            []StaffOverview `json:"staff"`
}

// StaffOverview is one provider row in the overview.
type StaffOverview struct {
	Name        string   `json:"name"`
	Role        string   `json:"role,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
}

// GetTenantOverview handles GET /admin/tenants/{tenantID}/overview.
func (h *Handler) GetTenantOverview(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	tenantID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "tenantID")))
	if err != nil {
		http.Error(w, "tenantID must be a UUID", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	overview := TenantOverview{ID: tenantID.String()}
	err = h.db.QueryRowContext(ctx, `
		SELECT b.name, COALESCE(b.phone, ''), COALESCE(b.email, ''),
		       COALESCE(b.subscription_tier, ''), b.active,
		       (SELECT COUNT(*) FROM services s WHERE s.business_id = b.id AND s.active),
		       (SELECT COUNT(*) FROM appointments a
		         WHERE a.business_id = b.id
		           AND a.date >= CURRENT_DATE
		           AND a.status <> 'cancelled')
		FROM businesses b
		WHERE b.id = $1`, tenantID).Scan(
		&overview.Name, &overview.Phone, &overview.Email,
		&overview.SubscriptionTier, &overview.Active,
		&overview.ServiceCount, &overview.UpcomingCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("admin: overview query failed", "tenant_id", tenantID, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT first_name, COALESCE(last_name, ''), COALESCE(role, ''), COALESCE(specialties, '{}')
		FROM staff
		WHERE business_id = $1 AND active
		ORDER BY first_name, last_name`, tenantID)
	if err != nil {
		h.logger.Error("admin: staff query failed", "tenant_id", tenantID, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var first, last string
		var s StaffOverview
		if err := rows.Scan(&first, &last, &s.Role, pq.Array(&s.Specialties)); err != nil {
			h.logger.Error("admin: staff scan failed", "tenant_id", tenantID, "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		s.Name = strings.TrimSpace(first + " " + last)
		overview.Staff = append(overview.Staff, s)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("admin: staff rows failed", "tenant_id", tenantID, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(overview)
}

// InvalidateContext handles POST /admin/tenants/{tenantID}/invalidate-context.
// Dashboards call this after mutating tenant data so cached webhook context
// refreshes before its TTL.
func (h *Handler) InvalidateContext(w http.ResponseWriter, r *http.Request) {
	if h.redis == nil {
		http.Error(w, "invalidation not configured", http.StatusServiceUnavailable)
		return
	}
	tenantID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "tenantID")))
	if err != nil {
		http.Error(w, "tenantID must be a UUID", http.StatusBadRequest)
		return
	}
	if err := tenantctx.PublishInvalidation(r.Context(), h.redis, tenantID); err != nil {
		h.logger.Error("admin: publish invalidation failed", "tenant_id", tenantID, "error", err)
		http.Error(w, "publish failed", http.StatusInternalServerError)
		return
	}
	h.logger.Info("admin: context invalidation published", "tenant_id", tenantID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "invalidation published"})
}
