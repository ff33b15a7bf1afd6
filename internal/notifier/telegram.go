package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	commonhttp "grant-intake/internal/common/http"
	"grant-intake/internal/models"
)

const DefaultTelegramBaseURL = "https://api.telegram.org"

type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// Telegram posts notifications to a chat through the Bot API sendMessage
// method.
type Telegram struct {
	client  *commonhttp.Client
	token   string
	chatID  string
	baseURL string
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func NewTelegram(cfg TelegramConfig, client *commonhttp.Client) *Telegram {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultTelegramBaseURL
	}
	return &Telegram{
		client:  client,
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		baseURL: base,
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Enabled() bool {
	return t.token != "" && t.chatID != ""
}

func (t *Telegram) Send(ctx context.Context, n models.Notification) error {
	if !t.Enabled() {
		return nil
	}

	req := sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  n.Body,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}
	var resp sendMessageResponse
	if err := t.client.PostJSON(ctx, t.endpoint("sendMessage"), req, &resp); err != nil {
		return t.redact(err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram sendMessage rejected: %s", resp.Description)
	}
	return nil
}

func (t *Telegram) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
}

// redact keeps the bot token out of errors, since transport errors quote the
// request URL.
func (t *Telegram) redact(err error) error {
	msg := err.Error()
	if t.token != "" {
		msg = strings.ReplaceAll(msg, t.token, "<redacted>")
	}
	return fmt.Errorf("telegram sendMessage: %w", errors.New(msg))
}
