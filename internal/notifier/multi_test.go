package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "grant-intake/internal/common/errors"
	"grant-intake/internal/common/logger"
	"grant-intake/internal/models"
)

type mockChannel struct {
	mock.Mock
	name    string
	enabled bool
}

func (m *mockChannel) Name() string  { return m.name }
func (m *mockChannel) Enabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func TestMulti_FansOutToEnabledChannels(t *testing.T) {
	chat := &mockChannel{name: "telegram", enabled: true}
	mail := &mockChannel{name: "email", enabled: true}
	sms := &mockChannel{name: "sms", enabled: false}

	isApplication := mock.MatchedBy(func(n models.Notification) bool {
		return n.Kind == models.KindApplication && n.RecordID == testApplication().ID
	})
	chat.On("Send", mock.Anything, isApplication).Return(nil).Once()
	mail.On("Send", mock.Anything, isApplication).Return(nil).Once()

	m := NewMulti(logger.NewTestLogger(t), chat, mail, sms)

	require.NoError(t, m.NotifyApplication(context.Background(), testApplication()))
	chat.AssertExpectations(t)
	mail.AssertExpectations(t)
	sms.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"telegram", "email"}, m.EnabledChannels())
}

func TestMulti_OneChannelFailureDoesNotStopOthers(t *testing.T) {
	chat := &mockChannel{name: "telegram", enabled: true}
	mail := &mockChannel{name: "email", enabled: true}
	chat.On("Send", mock.Anything, mock.Anything).Return(errors.New("chat not found"))
	mail.On("Send", mock.Anything, mock.Anything).Return(nil)

	m := NewMulti(logger.NewTestLogger(t), chat, mail)

	err := m.NotifyContact(context.Background(), testContact())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotificationSendFailed))
	assert.Contains(t, err.Error(), "chat not found")
	mail.AssertNumberOfCalls(t, "Send", 1)
}

func TestMulti_DeliverResults(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ok := &mockChannel{name: "telegram", enabled: true}
	bad := &mockChannel{name: "email", enabled: true}
	off := &mockChannel{name: "sms"}
	ok.On("Send", mock.Anything, mock.Anything).Return(nil)
	bad.On("Send", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	m := NewMulti(logger.NewNoOpLogger(), ok, bad, off)
	m.now = func() time.Time { return fixed }

	results := m.Deliver(context.Background(), ContactMessage(testContact()))

	require.Len(t, results, 3)
	assert.Equal(t, models.DeliveryResult{Channel: "telegram", Status: models.StatusSent, SentAt: fixed}, results[0])
	assert.Equal(t, models.DeliveryResult{Channel: "email", Status: models.StatusFailed, Error: "throttled"}, results[1])
	assert.Equal(t, models.DeliveryResult{Channel: "sms", Status: models.StatusDisabled}, results[2])
}

func TestMulti_NoChannelsIsANoOp(t *testing.T) {
	m := NewMulti(logger.NewNoOpLogger(), &mockChannel{name: "telegram"})

	assert.False(t, m.Enabled())
	assert.NoError(t, m.NotifyApplication(context.Background(), testApplication()))
	assert.NoError(t, m.NotifyContact(context.Background(), testContact()))
}

func TestMulti_SendTest(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		m := NewMulti(logger.NewNoOpLogger(), &mockChannel{name: "telegram"})

		err := m.SendTest(context.Background())

		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotificationNotConfigured))
	})

	t.Run("delivered", func(t *testing.T) {
		chat := &mockChannel{name: "telegram", enabled: true}
		chat.On("Send", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.Subject == "Notification test"
		})).Return(nil).Once()

		m := NewMulti(logger.NewNoOpLogger(), chat)

		require.NoError(t, m.SendTest(context.Background()))
		chat.AssertExpectations(t)
	})

	t.Run("delivery failed", func(t *testing.T) {
		chat := &mockChannel{name: "telegram", enabled: true}
		chat.On("Send", mock.Anything, mock.Anything).Return(errors.New("unauthorized"))

		m := NewMulti(logger.NewNoOpLogger(), chat)

		err := m.SendTest(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotificationSendFailed))
	})
}
