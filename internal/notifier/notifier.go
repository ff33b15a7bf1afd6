// Package notifier announces accepted submissions to operator channels.
// Delivery is best effort: failures are reported to the caller but never
// retried.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "grant-intake/internal/common/errors"
	"grant-intake/internal/common/logger"
	"grant-intake/internal/common/metrics"
	"grant-intake/internal/models"
)

// Channel delivers a rendered notification to one destination.
type Channel interface {
	Name() string
	// Enabled is false when the channel lacks configuration; Send is then
	// never called.
	Enabled() bool
	Send(ctx context.Context, n models.Notification) error
}

type Notifier interface {
	NotifyApplication(ctx context.Context, app *models.Application) error
	NotifyContact(ctx context.Context, c *models.Contact) error
	// SendTest delivers a test message, failing when no channel is enabled.
	SendTest(ctx context.Context) error
	Name() string
	Enabled() bool
}

// Multi fans a notification out to every enabled channel.
type Multi struct {
	channels []Channel
	logger   logger.Logger
	now      func() time.Time
}

func NewMulti(log logger.Logger, channels ...Channel) *Multi {
	return &Multi{
		channels: channels,
		logger:   log.WithFields(map[string]interface{}{"component": "notifier"}),
		now:      time.Now,
	}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Enabled() bool {
	for _, ch := range m.channels {
		if ch.Enabled() {
			return true
		}
	}
	return false
}

// EnabledChannels lists the names of configured channels.
func (m *Multi) EnabledChannels() []string {
	var names []string
	for _, ch := range m.channels {
		if ch.Enabled() {
			names = append(names, ch.Name())
		}
	}
	return names
}

func (m *Multi) NotifyApplication(ctx context.Context, app *models.Application) error {
	return resultsErr(m.Deliver(ctx, ApplicationMessage(app)))
}

func (m *Multi) NotifyContact(ctx context.Context, c *models.Contact) error {
	return resultsErr(m.Deliver(ctx, ContactMessage(c)))
}

func (m *Multi) SendTest(ctx context.Context) error {
	if !m.Enabled() {
		return apperrors.NewNotificationNotConfiguredError()
	}
	return resultsErr(m.Deliver(ctx, TestMessage(m.now())))
}

// Deliver sends n to every channel and reports one result per channel.
// Disabled channels are reported without being called.
func (m *Multi) Deliver(ctx context.Context, n models.Notification) []models.DeliveryResult {
	results := make([]models.DeliveryResult, 0, len(m.channels))
	for _, ch := range m.channels {
		res := models.DeliveryResult{Channel: ch.Name(), Status: models.StatusDisabled}

		if ch.Enabled() {
			if err := ch.Send(ctx, n); err != nil {
				res.Status = models.StatusFailed
				res.Error = err.Error()
				m.logger.Warn("Notification delivery failed", map[string]interface{}{
					"channel":  ch.Name(),
					"kind":     n.Kind,
					"recordId": n.RecordID,
					"error":    err.Error(),
				})
			} else {
				res.Status = models.StatusSent
				res.SentAt = m.now().UTC()
				m.logger.Debug("Notification delivered", map[string]interface{}{
					"channel":  ch.Name(),
					"kind":     n.Kind,
					"recordId": n.RecordID,
				})
			}
		}

		metrics.NotificationsTotal.WithLabelValues(res.Channel, res.Status).Inc()
		results = append(results, res)
	}
	return results
}

func resultsErr(results []models.DeliveryResult) error {
	var errs []error
	for _, r := range results {
		if r.Status == models.StatusFailed {
			errs = append(errs, apperrors.NewNotificationSendFailedError(r.Channel, errors.New(r.Error)))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d channel(s) failed: %w", len(errs), errors.Join(errs...))
}
