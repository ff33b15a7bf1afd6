package notifier

import (
	"context"
	"sync"
	"time"

	"grant-intake/internal/common/logger"
	"grant-intake/internal/common/metrics"
	"grant-intake/internal/models"
)

const DefaultTimeout = 5 * time.Second

// Dispatcher runs notifications off the request path. Each delivery gets its
// own deadline, independent of the request that triggered it.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   logger.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, log logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		notifier: n,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// DispatchApplication announces app in the background. app is copied.
func (d *Dispatcher) DispatchApplication(app models.Application) {
	d.dispatch(models.KindApplication, app.ID, func(ctx context.Context) error {
		return d.notifier.NotifyApplication(ctx, &app)
	})
}

// DispatchContact announces c in the background. c is copied.
func (d *Dispatcher) DispatchContact(c models.Contact) {
	d.dispatch(models.KindContact, c.ID, func(ctx context.Context) error {
		return d.notifier.NotifyContact(ctx, &c)
	})
}

func (d *Dispatcher) dispatch(kind models.SubmissionKind, id string, send func(context.Context) error) {
	if !d.notifier.Enabled() {
		return
	}

	d.wg.Add(1)
	metrics.NotificationsInFlight.Inc()
	go func() {
		defer d.wg.Done()
		defer metrics.NotificationsInFlight.Dec()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Notification panicked", map[string]interface{}{
					"kind":     kind,
					"recordId": id,
					"panic":    r,
				})
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := time.Now()
		if err := send(ctx); err != nil {
			d.logger.Error("Notification failed", map[string]interface{}{
				"kind":     kind,
				"recordId": id,
				"duration": time.Since(start).String(),
				"error":    err.Error(),
			})
			return
		}
		d.logger.Info("Notification sent", map[string]interface{}{
			"kind":     kind,
			"recordId": id,
			"duration": time.Since(start).String(),
		})
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
