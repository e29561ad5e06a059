package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

func TestHTTPSMSSenderSend(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewHTTPSMSSender(HTTPSMSConfig{
		BaseURL:    srv.URL,
		APIKey:     "sms-key",
		FromNumber: "+15550100000",
	}, logging.NewWithWriter(io.Discard, "error"))

	if err := sender.SendSMS(context.Background(), "+15550102000", "see you soon"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer sms-key" {
		t.Errorf("authorization: %q", auth)
	}
	if got["to"] != "+15550102000" || got["from"] != "+15550100000" || got["body"] != "see you soon" {
		t.Errorf("payload: %+v", got)
	}
}

func TestHTTPSMSSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewHTTPSMSSender(HTTPSMSConfig{BaseURL: srv.URL, APIKey: "k"},
		logging.NewWithWriter(io.Discard, "error"))

	if err := sender.SendSMS(context.Background(), "+15550102000", "hi"); err == nil {
		t.Fatal("expected an error for a 5xx provider response")
	}
}

func TestHTTPSMSSenderUnconfigured(t *testing.T) {
	if sender := NewHTTPSMSSender(HTTPSMSConfig{}, nil); sender != nil {
		t.Fatal("unconfigured provider must yield a nil sender")
	}
}
