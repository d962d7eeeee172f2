package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/HengWoo/TA-flagger/internal/httputil"
	"github.com/HengWoo/TA-flagger/internal/models"
)

const DefaultName = "TA-flagger"

// Sender posts short messages to a Slack or Discord webhook.
type Sender struct {
	webhookURL string
	name       string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewSender(webhookURL, name string) *Sender {
	if name == "" {
		name = DefaultName
	}
	return &Sender{
		webhookURL: webhookURL,
		name:       name,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// Send logs msg and, when a webhook is configured, delivers it. Delivery
// failures are logged and returned.
func (s *Sender) Send(ctx context.Context, msg string) error {
	formatted := "[" + s.name + "] " + msg
	slog.Info("notification", "component", "notifications", "msg", formatted)

	if s.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(s.formatPayload(formatted))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		slog.Error("webhook delivery failed", "component", "notifications", "err", err)
		return err
	}
	resp.Body.Close()
	return nil
}

// NotifyTrades sends one message summarizing newly closed trades.
func (s *Sender) NotifyTrades(ctx context.Context, symbol string, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	return s.Send(ctx, FormatTrades(symbol, trades))
}

// FormatTrades renders a one-line-per-trade summary.
func FormatTrades(symbol string, trades []models.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d new trade(s)", symbol, len(trades))
	for _, t := range trades {
		fmt.Fprintf(&b, "\n%s -> %s  %.2f -> %.2f  profit %+.2f  [%s]",
			t.BuyDate, t.SellDate, t.BuyPrice, t.SellPrice, t.Profit, strings.Join(t.Indicators, ","))
	}
	return b.String()
}

// webhookBody covers both chat dialects: Discord reads content, Slack
// reads text.
type webhookBody struct {
	Text     string `json:"text,omitempty"`
	Content  string `json:"content,omitempty"`
	Username string `json:"username"`
}

func (s *Sender) formatPayload(msg string) webhookBody {
	if strings.Contains(s.webhookURL, "discord") {
		return webhookBody{Content: msg, Username: s.name}
	}
	return webhookBody{Text: "`" + msg + "`", Username: s.name}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
