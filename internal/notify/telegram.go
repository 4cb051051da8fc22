package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"totals-tracker/internal/metrics"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	defaultTelegramTimeout = 10 * time.Second
	channelTelegram        = "telegram"
	maxTelegramErrorBody   = 512
)

// ErrTelegramNotConfigured is returned when the bot token or chat id is missing.
var ErrTelegramNotConfigured = errors.New("telegram notifier not configured")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TelegramConfig configures the Bot API client.
type TelegramConfig struct {
	BaseURL    string
	Token      string
	ChatID     string
	HTTPClient httpDoer
	Timeout    time.Duration
	Metrics    *metrics.Recorder
}

// Telegram sends alerts to a single chat through the Bot API sendMessage method.
// Delivery is best-effort; failures are returned and never retried.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient httpDoer
	metrics    *metrics.Recorder
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegram builds a Telegram notifier.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" || strings.TrimSpace(cfg.ChatID) == "" {
		return nil, ErrTelegramNotConfigured
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultTelegramBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTelegramTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Telegram{
		baseURL:    base,
		token:      cfg.Token,
		chatID:     cfg.ChatID,
		httpClient: client,
		metrics:    cfg.Metrics,
	}, nil
}

// Notify posts the message to the configured chat.
func (t *Telegram) Notify(ctx context.Context, message string) error {
	err := t.send(ctx, message)
	t.metrics.RecordDelivery(channelTelegram, err)
	return err
}

func (t *Telegram) send(ctx context.Context, message string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: message})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxTelegramErrorBody))
	var decoded sendMessageResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded.OK {
		desc := decoded.Description
		if desc == "" {
			desc = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("telegram sendMessage returned status %d: %s", resp.StatusCode, desc)
	}
	return nil
}
