package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// Telegram posts alerts to a chat through the bot sendMessage endpoint.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegram builds the notifier with a 10s request timeout.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		baseURL: defaultTelegramBaseURL,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithTelegramBaseURL overrides the API endpoint (tests).
func (t *Telegram) WithTelegramBaseURL(base string) *Telegram {
	if base != "" {
		t.baseURL = strings.TrimSuffix(base, "/")
	}
	return t
}

// Send posts one Markdown message. A non-2xx status is an error for the
// caller to log; the message is not retried.
func (t *Telegram) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
