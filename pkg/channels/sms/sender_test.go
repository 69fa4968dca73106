package sms

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
)

func testSender(baseURL string) *Sender {
	return (&Sender{
		accountSID:   "AC123",
		authToken:    "token",
		from:         "+15550001111",
		businessName: "ContractPulse",
		client:       http.DefaultClient,
		logger:       slog.Default(),
	}).WithBaseURL(baseURL)
}

func TestSenderSend(t *testing.T) {
	var captured url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		captured = r.PostForm

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid":"SM1234"}`))
	}))
	defer server.Close()

	sender := testSender(server.URL)

	messageID, err := sender.Send(context.Background(), models.Recipient{
		UserID: "user-1",
		Phone:  "+5511987654321",
	}, models.Content{
		Title:   "Contract expiring",
		Message: "Your contract expires in 7 days",
	})

	require.NoError(t, err)
	assert.Equal(t, "SM1234", messageID)
	assert.Equal(t, "+5511987654321", captured.Get("To"))
	assert.Equal(t, "+15550001111", captured.Get("From"))
	assert.Equal(t, "[ContractPulse] Your contract expires in 7 days", captured.Get("Body"))
}

func TestSenderSendInvalidPhone(t *testing.T) {
	sender := testSender("http://localhost:0")

	_, err := sender.Send(context.Background(), models.Recipient{Phone: "not-a-phone"}, models.Content{
		Message: "hello",
	})

	require.ErrorIs(t, err, channels.ErrInvalidPhoneNumber)
}

func TestSenderSendNotConfigured(t *testing.T) {
	sender := NewSender(slog.Default())
	sender.accountSID = ""

	_, err := sender.Send(context.Background(), models.Recipient{Phone: "+5511987654321"}, models.Content{
		Message: "hello",
	})

	require.ErrorIs(t, err, channels.ErrNotConfigured)
}

func TestSenderSendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer server.Close()

	sender := testSender(server.URL)

	_, err := sender.Send(context.Background(), models.Recipient{Phone: "+5511987654321"}, models.Content{
		Message: "hello",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid phone number")
}
