package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"firewatch-go/internal/config"
	"firewatch-go/internal/jobs"
	"firewatch-go/internal/logging"
	"firewatch-go/internal/models"
)

const (
	sendMessagePath = "/sendMessage"
	sendPhotoPath   = "/sendPhoto"
	telegramParse   = "Markdown"
	telegramTimeFmt = "15:04:05 02/01/2006"
)

// TelegramSendResult is the parsed bot API response body.
type TelegramSendResult struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramClient performs single-attempt sends against the bot API. A
// returned error is a transport failure; a parsed body with ok=false is a
// logical failure the caller must not retry.
type TelegramClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewTelegramClient(baseURL, token string, httpClient *http.Client) *TelegramClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TelegramClient{baseURL: baseURL, token: token, httpClient: httpClient}
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) (TelegramSendResult, error) {
	return c.post(ctx, sendMessagePath, url.Values{
		"chat_id":    {chatID},
		"text":       {text},
		"parse_mode": {telegramParse},
	})
}

func (c *TelegramClient) SendPhoto(ctx context.Context, chatID, photoURL, caption string) (TelegramSendResult, error) {
	return c.post(ctx, sendPhotoPath, url.Values{
		"chat_id":    {chatID},
		"photo":      {photoURL},
		"caption":    {caption},
		"parse_mode": {telegramParse},
	})
}

func (c *TelegramClient) post(ctx context.Context, path string, form url.Values) (TelegramSendResult, error) {
	endpoint := fmt.Sprintf("%s/bot%s%s", c.baseURL, c.token, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return TelegramSendResult{}, fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TelegramSendResult{}, fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed TelegramSendResult
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return TelegramSendResult{}, fmt.Errorf("failed to decode telegram response: %w", err)
	}

	if (resp.StatusCode < 200 || resp.StatusCode > 299) && parsed.Description == "" {
		parsed.OK = false
		parsed.Description = fmt.Sprintf("HTTP status %d", resp.StatusCode)
	}
	return parsed, nil
}

// TelegramNotifier delivers one alert over the chat-bot channel. This is the
// only channel with retries: transport errors back off exponentially up to
// the configured attempt budget; a logical "not ok" response is logged once
// and never retried.
type TelegramNotifier struct {
	cfg      *config.Config
	client   *TelegramClient
	policy   jobs.RetryPolicy
	location *time.Location
	log      zerolog.Logger
}

func NewTelegramNotifier(cfg *config.Config, client *TelegramClient) *TelegramNotifier {
	if client == nil {
		client = NewTelegramClient(cfg.TelegramAPIURL, cfg.TelegramBotToken,
			&http.Client{Timeout: cfg.TelegramTimeout})
	}

	location, err := time.LoadLocation(cfg.TelegramTimezone)
	if err != nil {
		location = time.UTC
	}

	return &TelegramNotifier{
		cfg:    cfg,
		client: client,
		policy: jobs.RetryPolicy{
			MaxAttempts: cfg.TelegramMaxAttempts,
			BaseDelay:   cfg.TelegramBackoffBase,
			MaxDelay:    cfg.TelegramBackoffMax,
		},
		location: location,
		log:      logging.NewServiceLogger(cfg, "telegram"),
	}
}

// Send delivers the alert, photo-with-caption when an image URL is present.
// Skips with a warning when the bot is not configured.
func (t *TelegramNotifier) Send(ctx context.Context, alert *models.Alert, sourceName string) {
	if !t.cfg.TelegramConfigured() {
		t.log.Warn().Msg("Telegram bot not configured, skipping notification")
		return
	}

	message := t.buildMessage(alert, sourceName)

	op := func(ctx context.Context) error {
		var res TelegramSendResult
		var err error
		if alert.ImageURL != "" {
			res, err = t.client.SendPhoto(ctx, t.cfg.TelegramChatID, alert.ImageURL, message)
		} else {
			res, err = t.client.SendMessage(ctx, t.cfg.TelegramChatID, message)
		}
		if err != nil {
			return err
		}
		if !res.OK {
			// Logical failure from the bot API: log, do not retry.
			t.log.Error().
				Uint("alert_id", alert.ID).
				Str("description", res.Description).
				Msg("Telegram rejected the notification")
		}
		return nil
	}

	t.policy.Do(ctx, op, func(err error) {
		t.log.Error().
			Err(err).
			Uint("alert_id", alert.ID).
			Int("attempts", t.policy.MaxAttempts).
			Msg("Telegram notification failed permanently")
	})
}

func (t *TelegramNotifier) buildMessage(alert *models.Alert, sourceName string) string {
	zoneName := ""
	if alert.Zone != nil {
		zoneName = alert.Zone.Name
	}
	timestamp := alert.CreatedAt.In(t.location).Format(telegramTimeFmt)

	return fmt.Sprintf("🔥 *Fire Alert*\nZone: %s\nSource: %s (%s)\nTime: %s\n\n%s",
		zoneName, sourceName, alert.SourceKind, timestamp, alert.Message)
}
