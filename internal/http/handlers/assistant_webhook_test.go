package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sablehq/frontdesk-ai-platform/internal/booking"
	"github.com/sablehq/frontdesk-ai-platform/internal/tenancy"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

type fakeResolver struct {
	tenantID uuid.UUID
	err      error
	lastLine string
}

func (f *fakeResolver) Resolve(_ context.Context, line string) (uuid.UUID, error) {
	f.lastLine = line
	return f.tenantID, f.err
}

type fakeIntents struct {
	availability booking.Result
	book         booking.Result
	lookup       booking.Result
	cancel       booking.Result

	bookArgs  *booking.BookArgs
	callCount int
	panicOn   string
}

func (f *fakeIntents) CheckAvailability(_ context.Context, _ booking.AvailabilityArgs, _ uuid.UUID) booking.Result {
	f.callCount++
	if f.panicOn == FnCheckAvailability {
		panic("boom")
	}
	return f.availability
}

func (f *fakeIntents) BookAppointment(_ context.Context, args booking.BookArgs, _ uuid.UUID) booking.Result {
	f.callCount++
	f.bookArgs = &args
	return f.book
}

func (f *fakeIntents) CheckAppointments(_ context.Context, _ booking.LookupArgs, _ uuid.UUID) booking.Result {
	f.callCount++
	return f.lookup
}

func (f *fakeIntents) CancelAppointment(_ context.Context, _ booking.CancelArgs, _ uuid.UUID) booking.Result {
	f.callCount++
	return f.cancel
}

type upperInjector struct{}

func (upperInjector) IntoResult(_ context.Context, _ uuid.UUID, res booking.Result) booking.Result {
	res.Message = strings.ToUpper(res.Message)
	return res
}

func newTestHandler(resolver *fakeResolver, intents *fakeIntents, apiKey string) *AssistantWebhookHandler {
	return NewAssistantWebhookHandler(AssistantWebhookConfig{
		Resolver: resolver,
		Intents:  intents,
		Logger:   logging.NewWithWriter(io.Discard, "error"),
		APIKey:   apiKey,
	})
}

func postEvent(t *testing.T, h *AssistantWebhookHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/assistant", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.HandleAssistantWebhook(rec, req)
	return rec
}

func TestWebhookBatchToolCalls(t *testing.T) {
	resolver := &fakeResolver{tenantID: uuid.New()}
	intents := &fakeIntents{
		availability: booking.Result{Message: "open slots"},
		book:         booking.Result{Message: "booked"},
	}
	h := newTestHandler(resolver, intents, "")

	body := `{"message": {
		"call": {"phoneNumber": "+15550102000"},
		"toolCalls": [
			{"id": "tc-1", "function": {"name": "check_availability", "arguments": {"preferred_date": "2026-09-02"}}},
			{"id": "tc-2", "function": {"name": "book_appointment", "arguments": {"customer_name": "Jane Doe", "customer_phone": "5550102000", "appointment_date": "2026-09-02", "start_time": "10:00"}}}
		]
	}}`
	rec := postEvent(t, h, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if resolver.lastLine != "+15550102000" {
		t.Errorf("resolved line: got %q", resolver.lastLine)
	}
	var resp struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results: got %d", len(resp.Results))
	}
	if resp.Results[0]["toolCallId"] != "tc-1" || resp.Results[0]["message"] != "open slots" {
		t.Errorf("first result: %+v", resp.Results[0])
	}
	if resp.Results[1]["toolCallId"] != "tc-2" {
		t.Errorf("second result: %+v", resp.Results[1])
	}
	if intents.bookArgs == nil || intents.bookArgs.CustomerName != "Jane Doe" {
		t.Errorf("book args: %+v", intents.bookArgs)
	}
}

func TestWebhookSingleFunctionCall(t *testing.T) {
	intents := &fakeIntents{lookup: booking.Result{Message: "one appointment", Count: 1}}
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, intents, "")

	body := `{"message": {
		"call": {"to": "+15550102000"},
		"functionCall": {"name": "check_appointments", "arguments": {"customer_phone": "5550102000"}}
	}}`
	rec := postEvent(t, h, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, hasResults := resp["results"]; hasResults {
		t.Errorf("single call must return a bare object: %+v", resp)
	}
	if resp["message"] != "one appointment" {
		t.Errorf("message: %+v", resp)
	}
}

func TestWebhookStringEncodedArguments(t *testing.T) {
	intents := &fakeIntents{book: booking.Result{Message: "booked"}}
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, intents, "")

	args := `{\"customer_name\": \"Jane Doe\", \"customer_phone\": \"5550102000\", \"appointment_date\": \"2026-09-02\", \"start_time\": \"10:00\"}`
	body := fmt.Sprintf(`{"message": {
		"call": {"phoneNumber": "+15550102000"},
		"functionCall": {"name": "book_appointment", "arguments": "%s"}
	}}`, args)
	rec := postEvent(t, h, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if intents.bookArgs == nil || intents.bookArgs.CustomerPhone != "5550102000" {
		t.Errorf("string-encoded arguments not decoded: %+v", intents.bookArgs)
	}
}

func TestWebhookUnknownFunction(t *testing.T) {
	intents := &fakeIntents{}
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, intents, "")

	body := `{"message": {
		"call": {"phoneNumber": "+15550102000"},
		"functionCall": {"name": "foo_bar", "arguments": {}}
	}}`
	rec := postEvent(t, h, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("unknown function is not a transport error: status %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "Unknown function: foo_bar" {
		t.Errorf("error: %+v", resp)
	}
	if intents.callCount != 0 {
		t.Errorf("no intent should run for an unknown name, ran %d", intents.callCount)
	}
}

func TestWebhookTenantNotResolved(t *testing.T) {
	intents := &fakeIntents{}
	h := newTestHandler(&fakeResolver{err: tenancy.ErrTenantNotResolved}, intents, "")

	body := `{"message": {
		"call": {"phoneNumber": "+15559999999"},
		"functionCall": {"name": "check_availability", "arguments": {"preferred_date": "2026-09-02"}}
	}}`
	rec := postEvent(t, h, body, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] == "" {
		t.Error("rejection must carry a speakable message")
	}
	if intents.callCount != 0 {
		t.Errorf("no handler may run after a resolution failure, ran %d", intents.callCount)
	}
}

func TestWebhookAPIKeyMismatch(t *testing.T) {
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, &fakeIntents{}, "secret-key")

	body := `{"message": {"functionCall": {"name": "check_availability"}}}`
	rec := postEvent(t, h, body, map[string]string{"X-Api-Key": "wrong"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestWebhookAPIKeyMatch(t *testing.T) {
	intents := &fakeIntents{availability: booking.Result{Message: "open"}}
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, intents, "secret-key")

	body := `{"message": {
		"call": {"phoneNumber": "+15550102000"},
		"functionCall": {"name": "check_availability", "arguments": {"preferred_date": "2026-09-02"}}
	}}`
	rec := postEvent(t, h, body, map[string]string{"X-Api-Key": "secret-key"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestWebhookEmptyEvent(t *testing.T) {
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, &fakeIntents{}, "")

	rec := postEvent(t, h, `{"message": {}}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, &fakeIntents{}, "")

	rec := postEvent(t, h, `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("even rejections must be JSON: %v", err)
	}
}

func TestWebhookIntentPanicIsContained(t *testing.T) {
	intents := &fakeIntents{panicOn: FnCheckAvailability, book: booking.Result{Message: "booked"}}
	h := newTestHandler(&fakeResolver{tenantID: uuid.New()}, intents, "")

	body := `{"message": {
		"call": {"phoneNumber": "+15550102000"},
		"toolCalls": [
			{"id": "tc-1", "function": {"name": "check_availability", "arguments": {"preferred_date": "2026-09-02"}}},
			{"id": "tc-2", "function": {"name": "book_appointment", "arguments": {"customer_name": "Jane Doe", "customer_phone": "5550102000", "appointment_date": "2026-09-02", "start_time": "10:00"}}}
		]
	}}`
	rec := postEvent(t, h, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("a panicking intent must not fail the batch: status %d", rec.Code)
	}
	var resp struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results: got %d", len(resp.Results))
	}
	if resp.Results[0]["message"] == "" {
		t.Error("panicked call still needs a speakable message")
	}
	if resp.Results[1]["message"] != "booked" {
		t.Errorf("second call should succeed: %+v", resp.Results[1])
	}
}

func TestWebhookInjectorRewritesMessage(t *testing.T) {
	intents := &fakeIntents{availability: booking.Result{Message: "open slots"}}
	h := NewAssistantWebhookHandler(AssistantWebhookConfig{
		Resolver: &fakeResolver{tenantID: uuid.New()},
		Intents:  intents,
		Injector: upperInjector{},
		Logger:   logging.NewWithWriter(io.Discard, "error"),
	})

	body := `{"message": {
		"call": {"phoneNumber": "+15550102000"},
		"functionCall": {"name": "check_availability", "arguments": {"preferred_date": "2026-09-02"}}
	}}`
	rec := postEvent(t, h, body, nil)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "OPEN SLOTS" {
		t.Errorf("injector did not run: %+v", resp)
	}
}
