package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "grant-intake/internal/common/http"
	"grant-intake/internal/models"
)

const testToken = "123456:SECRET-token"

func newTelegramServer(t *testing.T, handler http.HandlerFunc) *Telegram {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTelegram(TelegramConfig{
		BotToken: testToken,
		ChatID:   "-100200300",
		BaseURL:  srv.URL + "/",
	}, commonhttp.NewClientWith(srv.Client()))
}

func TestTelegram_Send(t *testing.T) {
	var got sendMessageRequest
	tg := newTelegramServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot"+testToken+"/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	})

	err := tg.Send(context.Background(), ContactMessage(testContact()))

	require.NoError(t, err)
	assert.Equal(t, "-100200300", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.True(t, got.DisableWebPagePreview)
	assert.Contains(t, got.Text, "New Contact Form Submission")
}

func TestTelegram_SendHTTPErrorRedactsToken(t *testing.T) {
	tg := newTelegramServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := tg.Send(context.Background(), TestMessage(time.Now()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.NotContains(t, err.Error(), testToken)
}

func TestTelegram_SendRejectedByAPI(t *testing.T) {
	tg := newTelegramServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"message is too long"}`))
	})

	err := tg.Send(context.Background(), TestMessage(time.Now()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is too long")
}

func TestTelegram_TransportErrorRedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: testToken, ChatID: "1", BaseURL: url},
		commonhttp.NewClient(time.Second))

	err := tg.Send(context.Background(), TestMessage(time.Now()))

	require.Error(t, err)
	assert.NotContains(t, err.Error(), testToken)
	assert.Contains(t, err.Error(), "<redacted>")
}

func TestTelegram_DisabledWithoutCredentials(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	tests := []TelegramConfig{
		{ChatID: "1", BaseURL: srv.URL},
		{BotToken: testToken, BaseURL: srv.URL},
		{BaseURL: srv.URL},
	}
	for _, cfg := range tests {
		tg := NewTelegram(cfg, commonhttp.NewClientWith(srv.Client()))
		assert.False(t, tg.Enabled())
		assert.NoError(t, tg.Send(context.Background(), models.Notification{Body: "x"}))
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestTelegram_DefaultBaseURL(t *testing.T) {
	tg := NewTelegram(TelegramConfig{BotToken: "t", ChatID: "c"}, commonhttp.NewClient(time.Second))
	assert.Equal(t, "https://api.telegram.org/bott/sendMessage", tg.endpoint("sendMessage"))
}
