package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-intake/internal/common/logger"
	"grant-intake/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeNotifier struct {
	enabled bool
	block   bool

	mu           sync.Mutex
	applications []models.Application
	contacts     []models.Contact
	deadlines    []time.Time
	err          error
	calls        int32
}

func (f *fakeNotifier) record(ctx context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	if dl, ok := ctx.Deadline(); ok {
		f.mu.Lock()
		f.deadlines = append(f.deadlines, dl)
		f.mu.Unlock()
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeNotifier) NotifyApplication(ctx context.Context, app *models.Application) error {
	f.mu.Lock()
	f.applications = append(f.applications, *app)
	f.mu.Unlock()
	return f.record(ctx)
}

func (f *fakeNotifier) NotifyContact(ctx context.Context, c *models.Contact) error {
	f.mu.Lock()
	f.contacts = append(f.contacts, *c)
	f.mu.Unlock()
	return f.record(ctx)
}

func (f *fakeNotifier) SendTest(ctx context.Context) error { return f.record(ctx) }
func (f *fakeNotifier) Name() string                      { return "fake" }
func (f *fakeNotifier) Enabled() bool                     { return f.enabled }

func waitFor(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
}

// ==========================
// Dispatch
// ==========================

func TestDispatcher_DeliversInBackground(t *testing.T) {
	fn := &fakeNotifier{enabled: true}
	d := NewDispatcher(fn, time.Second, logger.NewTestLogger(t))

	d.DispatchApplication(*testApplication())
	d.DispatchContact(*testContact())
	waitFor(t, d)

	require.Len(t, fn.applications, 1)
	require.Len(t, fn.contacts, 1)
	assert.Equal(t, testApplication().ID, fn.applications[0].ID)
	assert.Equal(t, "c-1", fn.contacts[0].ID)
}

func TestDispatcher_CopiesRecord(t *testing.T) {
	fn := &fakeNotifier{enabled: true, block: true}
	d := NewDispatcher(fn, 50*time.Millisecond, logger.NewNoOpLogger())

	c := *testContact()
	d.DispatchContact(c)
	c.Message = "changed after dispatch"
	waitFor(t, d)

	require.Len(t, fn.contacts, 1)
	assert.Equal(t, "Hello", fn.contacts[0].Message)
}

func TestDispatcher_AppliesTimeout(t *testing.T) {
	fn := &fakeNotifier{enabled: true, block: true}
	d := NewDispatcher(fn, 30*time.Millisecond, logger.NewTestLogger(t))

	start := time.Now()
	d.DispatchContact(*testContact())
	waitFor(t, d)

	require.Len(t, fn.deadlines, 1)
	assert.WithinDuration(t, start.Add(30*time.Millisecond), fn.deadlines[0], 25*time.Millisecond)
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	fn := &fakeNotifier{enabled: true, err: errors.New("boom")}
	d := NewDispatcher(fn, time.Second, logger.NewTestLogger(t))

	d.DispatchApplication(*testApplication())
	waitFor(t, d)

	assert.Equal(t, int32(1), atomic.LoadInt32(&fn.calls))
}

func TestDispatcher_SkipsWhenDisabled(t *testing.T) {
	fn := &fakeNotifier{enabled: false}
	d := NewDispatcher(fn, time.Second, logger.NewNoOpLogger())

	d.DispatchApplication(*testApplication())
	waitFor(t, d)

	assert.Zero(t, atomic.LoadInt32(&fn.calls))
}

func TestDispatcher_DefaultTimeout(t *testing.T) {
	d := NewDispatcher(&fakeNotifier{}, 0, logger.NewNoOpLogger())
	assert.Equal(t, DefaultTimeout, d.timeout)
}

// ==========================
// Wait
// ==========================

func TestDispatcher_WaitHonorsContext(t *testing.T) {
	fn := &fakeNotifier{enabled: true, block: true}
	d := NewDispatcher(fn, time.Second, logger.NewNoOpLogger())

	d.DispatchContact(*testContact())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	waitFor(t, d)
}
