package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// HTTPSMSSender sends SMS through a provider's REST API. The provider expects
// a bearer-authenticated POST of {to, from, body}.
type HTTPSMSSender struct {
	client  *http.Client
	baseURL string
	apiKey  string
	from    string
	logger  *logging.Logger
}

// HTTPSMSConfig holds configuration for the SMS provider.
type HTTPSMSConfig struct {
	BaseURL    string
	APIKey     string
	FromNumber string
}

// NewHTTPSMSSender creates an SMS sender. Returns nil when the provider is
// not configured.
func NewHTTPSMSSender(cfg HTTPSMSConfig, logger *logging.Logger) *HTTPSMSSender {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPSMSSender{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		from:    cfg.FromNumber,
		logger:  logger,
	}
}

// SendSMS sends one message to one recipient.
func (s *HTTPSMSSender) SendSMS(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"to":   to,
		"from": s.from,
		"body": body,
	})
	if err != nil {
		return fmt.Errorf("notify: encode sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("sms send failed", "error", err, "to", to)
		return fmt.Errorf("notify: sms send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.logger.Error("sms provider returned error status", "status", resp.StatusCode, "to", to)
		return fmt.Errorf("notify: sms provider returned status %d", resp.StatusCode)
	}

	s.logger.Info("sms sent", "to", to, "status", resp.StatusCode)
	return nil
}

var _ SMSSender = (*HTTPSMSSender)(nil)
