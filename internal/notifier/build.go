package notifier

import (
	"context"

	commonaws "grant-intake/internal/common/aws"
	"grant-intake/internal/common/config"
	commonhttp "grant-intake/internal/common/http"
	"grant-intake/internal/common/logger"
)

// FromConfig assembles the configured channels. Unconfigured channels are
// still present but disabled; AWS credentials are only resolved when an AWS
// channel is switched on.
func FromConfig(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Multi, error) {
	timeout := config.GetDuration(cfg.Timeout)
	channels := []Channel{
		NewTelegram(TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			BaseURL:  cfg.Telegram.APIBaseURL,
		}, commonhttp.NewClient(timeout)),
	}

	if !cfg.TelegramConfigured() {
		log.Warn("Telegram not configured. Set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID to enable chat notifications", nil)
	}

	if cfg.AWSEnabled() {
		awsCfg, err := commonaws.LoadConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		if cfg.Email.Enabled {
			channels = append(channels, NewEmail(commonaws.NewSESClient(awsCfg), cfg.Email.FromEmail, cfg.Email.To))
		}
		if cfg.SMS.Enabled {
			channels = append(channels, NewSMS(commonaws.NewSNSClient(awsCfg), cfg.SMS.PhoneNumbers))
		}
	}

	m := NewMulti(log, channels...)
	log.Info("Notification channels ready", map[string]interface{}{
		"enabled": m.EnabledChannels(),
		"timeout": timeout.String(),
	})
	return m, nil
}
