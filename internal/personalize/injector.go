package personalize

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/booking"
	"github.com/sablehq/frontdesk-ai-platform/internal/tenantctx"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// ContextSource provides cached tenant context.
type ContextSource interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*tenantctx.Context, error)
}

// Inject substitutes every placeholder in text with the tenant's data.
// Unknown placeholders are left untouched.
func Inject(text string, tc *tenantctx.Context) string {
	if tc == nil || tc.Business == nil || !strings.Contains(text, "{") {
		return text
	}
	b := tc.Business
	r := strings.NewReplacer(
		"{business_name}", b.Name,
		"{business_phone}", b.Phone,
		"{business_email}", b.Email,
		"{business_website}", b.Website,
		"{business_address}", b.FormattedAddress(),
		"{subscription_tier}", b.SubscriptionTier,
		"{services_list}", FormatServices(tc.Services),
		"{staff_list}", FormatStaff(tc.Staff),
		"{business_hours}", FormatHours(tc.Hours),
	)
	return r.Replace(text)
}

// Injector personalizes outbound text using the tenant context cache.
// Personalization is always best-effort: when context cannot be fetched the
// input passes through unchanged, placeholders and all, because a delayed
// answer is worse for the caller than a generic one.
type Injector struct {
	source ContextSource
	logger *logging.Logger
}

// NewInjector creates an Injector.
func NewInjector(source ContextSource, logger *logging.Logger) *Injector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Injector{source: source, logger: logger}
}

// IntoText personalizes a single string.
func (i *Injector) IntoText(ctx context.Context, tenantID uuid.UUID, text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	tc, err := i.source.Get(ctx, tenantID)
	if err != nil {
		i.logger.Warn("personalize: context unavailable, passing text through",
			"tenant_id", tenantID, "error", err)
		return text
	}
	return Inject(text, tc)
}

// IntoResult personalizes only the spoken Message of a handler result. The
// structured fields are contract data and are never rewritten.
func (i *Injector) IntoResult(ctx context.Context, tenantID uuid.UUID, res booking.Result) booking.Result {
	res.Message = i.IntoText(ctx, tenantID, res.Message)
	return res
}
