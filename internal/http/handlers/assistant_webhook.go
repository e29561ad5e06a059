package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sablehq/frontdesk-ai-platform/internal/booking"
	"github.com/sablehq/frontdesk-ai-platform/internal/observability/metrics"
	"github.com/sablehq/frontdesk-ai-platform/internal/tenancy"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

var webhookTracer = otel.Tracer("frontdesk.internal.http.assistant")

// Assistant function names dispatched by the webhook.
const (
	FnCheckAvailability = "check_availability"
	FnBookAppointment   = "book_appointment"
	FnCheckAppointments = "check_appointments"
	FnCancelAppointment = "cancel_appointment"
)

// ----- Voice assistant webhook event types -----

// AssistantEvent is the top-level webhook payload. The voice platform posts
// one event per assistant turn; a turn carries either a batch of toolCalls or
// one legacy functionCall.
type AssistantEvent struct {
	Message AssistantMessage `json:"message"`
}

// AssistantMessage holds the function calls plus call metadata.
type AssistantMessage struct {
	ToolCalls    []ToolCall    `json:"toolCalls,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
	Call         *CallInfo     `json:"call,omitempty"`
}

// ToolCall is one function invocation within a batch.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the intent and carries its arguments. Arguments arrive
// as a JSON object from some platform versions and as a JSON-encoded string
// from others; both are accepted.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallInfo identifies the phone line the caller dialed.
type CallInfo struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	To          string `json:"to,omitempty"`
}

// lineNumber returns whichever line identifier the platform filled in.
func (c *CallInfo) lineNumber() string {
	if c == nil {
		return ""
	}
	if c.PhoneNumber != "" {
		return c.PhoneNumber
	}
	return c.To
}

// webhookError is the JSON body for rejected events.
type webhookError struct {
	Message string `json:"message"`
}

// ----- Handler -----

// TenantResolver maps an inbound line number to the owning tenant.
type TenantResolver interface {
	Resolve(ctx context.Context, lineNumber string) (uuid.UUID, error)
}

// IntentHandlers executes the four booking intents.
type IntentHandlers interface {
	CheckAvailability(ctx context.Context, args booking.AvailabilityArgs, tenantID uuid.UUID) booking.Result
	BookAppointment(ctx context.Context, args booking.BookArgs, tenantID uuid.UUID) booking.Result
	CheckAppointments(ctx context.Context, args booking.LookupArgs, tenantID uuid.UUID) booking.Result
	CancelAppointment(ctx context.Context, args booking.CancelArgs, tenantID uuid.UUID) booking.Result
}

// ResultInjector personalizes outbound results. Injection is best-effort and
// must never change a result's structured fields.
type ResultInjector interface {
	IntoResult(ctx context.Context, tenantID uuid.UUID, res booking.Result) booking.Result
}

// AssistantWebhookHandler receives function-call events from the voice
// platform, resolves the tenant, runs the requested intents and shapes the
// response. The upstream voice agent has no fallback for silence, so every
// path out of this handler carries a speakable message.
type AssistantWebhookHandler struct {
	resolver TenantResolver
	intents  IntentHandlers
	injector ResultInjector
	metrics  *metrics.WebhookMetrics
	logger   *logging.Logger

	// apiKey guards the endpoint when set; the voice platform echoes it in
	// the X-Api-Key header.
	apiKey  string
	timeout time.Duration
}

// AssistantWebhookConfig configures the AssistantWebhookHandler.
type AssistantWebhookConfig struct {
	Resolver TenantResolver
	Intents  IntentHandlers
	Injector ResultInjector
	Metrics  *metrics.WebhookMetrics
	Logger   *logging.Logger
	APIKey   string
	Timeout  time.Duration
}

// NewAssistantWebhookHandler creates the webhook handler.
func NewAssistantWebhookHandler(cfg AssistantWebhookConfig) *AssistantWebhookHandler {
	if cfg.Resolver == nil {
		panic("handlers: tenant resolver required")
	}
	if cfg.Intents == nil {
		panic("handlers: intent handlers required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &AssistantWebhookHandler{
		resolver: cfg.Resolver,
		intents:  cfg.Intents,
		injector: cfg.Injector,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
	}
}

const fallbackMessage = "I'm sorry, something went wrong on our end. " +
	"Please call us directly and we'll help you right away."

// HandleAssistantWebhook is the HTTP handler for POST /webhooks/assistant.
func (h *AssistantWebhookHandler) HandleAssistantWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "webhook.assistant.event")
	defer span.End()

	// Nothing past this point may escape as an unhandled panic; the voice
	// platform must always get a JSON body to speak from.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook: panic recovered", "panic", rec)
			span.RecordError(errors.New("panic in webhook handler"))
			writeJSON(w, http.StatusInternalServerError, webhookError{Message: fallbackMessage})
		}
	}()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if h.apiKey != "" && r.Header.Get("X-Api-Key") != h.apiKey {
		h.logger.Warn("webhook: api key mismatch", "remote_ip", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, webhookError{Message: "unauthorized"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Error("webhook: failed to read body", "error", err)
		writeJSON(w, http.StatusBadRequest, webhookError{Message: fallbackMessage})
		return
	}

	var event AssistantEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("webhook: failed to parse event", "error", err)
		writeJSON(w, http.StatusBadRequest, webhookError{Message: fallbackMessage})
		return
	}

	calls, batch := collectCalls(event.Message)
	if len(calls) == 0 {
		h.logger.Warn("webhook: event carries no function calls")
		writeJSON(w, http.StatusBadRequest, webhookError{Message: "no function call in event"})
		return
	}

	line := event.Message.Call.lineNumber()
	tenantID, err := h.resolver.Resolve(ctx, line)
	if err != nil {
		h.metrics.ObserveTenantMiss()
		span.RecordError(err)
		if errors.Is(err, tenancy.ErrTenantNotResolved) {
			h.logger.Warn("webhook: tenant not resolved", "line", line)
			writeJSON(w, http.StatusNotFound, webhookError{
				Message: "I'm sorry, this number isn't set up yet. Please call the business directly.",
			})
			return
		}
		h.logger.Error("webhook: tenant resolution failed", "line", line, "error", err)
		writeJSON(w, http.StatusInternalServerError, webhookError{Message: fallbackMessage})
		return
	}
	span.SetAttributes(
		attribute.String("frontdesk.tenant_id", tenantID.String()),
		attribute.Int("frontdesk.call_count", len(calls)),
	)

	results := make([]dispatchResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, h.dispatch(ctx, call, tenantID))
	}

	if batch {
		writeJSON(w, http.StatusOK, map[string]any{"results": toPayloads(results)})
		return
	}
	writeJSON(w, http.StatusOK, results[0].payload())
}

// dispatchResult is one function call's outcome. Unknown function names carry
// only an error string; everything else carries a booking result.
type dispatchResult struct {
	toolCallID string
	unknown    string
	result     booking.Result
}

func (d dispatchResult) payload() any {
	if d.unknown != "" {
		if d.toolCallID != "" {
			return map[string]string{"toolCallId": d.toolCallID, "error": d.unknown}
		}
		return map[string]string{"error": d.unknown}
	}
	if d.toolCallID != "" {
		return struct {
			ToolCallID string `json:"toolCallId"`
			booking.Result
		}{d.toolCallID, d.result}
	}
	return d.result
}

func toPayloads(results []dispatchResult) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.payload()
	}
	return out
}

func (h *AssistantWebhookHandler) dispatch(ctx context.Context, call ToolCall, tenantID uuid.UUID) (out dispatchResult) {
	start := time.Now()
	name := strings.TrimSpace(call.Function.Name)
	out.toolCallID = call.ID

	// A panicking intent handler fails one call, not the whole batch.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook: intent panic recovered", "function", name, "panic", rec)
			out.result = booking.Result{Message: fallbackMessage}
			h.metrics.ObserveCall(name, "panic")
		}
		h.metrics.ObserveDispatchLatency(name, time.Since(start).Seconds())
	}()

	switch name {
	case FnCheckAvailability:
		var args booking.AvailabilityArgs
		if err := decodeArguments(call.Function.Arguments, &args); err != nil {
			return h.badArguments(name, err, &out)
		}
		out.result = h.intents.CheckAvailability(ctx, args, tenantID)
	case FnBookAppointment:
		var args booking.BookArgs
		if err := decodeArguments(call.Function.Arguments, &args); err != nil {
			return h.badArguments(name, err, &out)
		}
		out.result = h.intents.BookAppointment(ctx, args, tenantID)
	case FnCheckAppointments:
		var args booking.LookupArgs
		if err := decodeArguments(call.Function.Arguments, &args); err != nil {
			return h.badArguments(name, err, &out)
		}
		out.result = h.intents.CheckAppointments(ctx, args, tenantID)
	case FnCancelAppointment:
		var args booking.CancelArgs
		if err := decodeArguments(call.Function.Arguments, &args); err != nil {
			return h.badArguments(name, err, &out)
		}
		out.result = h.intents.CancelAppointment(ctx, args, tenantID)
	default:
		h.logger.Warn("webhook: unknown function", "function", name)
		out.unknown = "Unknown function: " + name
		h.metrics.ObserveCall(name, "unknown")
		return out
	}

	if h.injector != nil {
		out.result = h.injector.IntoResult(ctx, tenantID, out.result)
	}
	h.metrics.ObserveCall(name, outcomeLabel(out.result))
	return out
}

func (h *AssistantWebhookHandler) badArguments(name string, err error, out *dispatchResult) dispatchResult {
	h.logger.Warn("webhook: bad arguments", "function", name, "error", err)
	out.result = booking.Result{
		Message: "I'm sorry, I didn't catch that. Could you say it again?",
		Error:   "invalid_arguments",
	}
	h.metrics.ObserveCall(name, "bad_arguments")
	return *out
}

func outcomeLabel(res booking.Result) string {
	if res.Error != "" {
		return "error"
	}
	if res.Success != nil && !*res.Success {
		return "failure"
	}
	return "success"
}

// collectCalls flattens both event shapes into one list. The second return
// reports whether the caller dispatched a batch, which decides the response
// shape.
func collectCalls(msg AssistantMessage) ([]ToolCall, bool) {
	if len(msg.ToolCalls) > 0 {
		return msg.ToolCalls, true
	}
	if msg.FunctionCall != nil {
		return []ToolCall{{Function: *msg.FunctionCall}}, false
	}
	return nil, false
}

// decodeArguments accepts arguments as a JSON object or as a JSON-encoded
// string holding an object.
func decodeArguments(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return err
		}
		if strings.TrimSpace(inner) == "" {
			return nil
		}
		return json.Unmarshal([]byte(inner), dst)
	}
	return json.Unmarshal(raw, dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
