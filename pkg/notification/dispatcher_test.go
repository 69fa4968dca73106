package notification

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/models"
)

type fakeSender struct {
	channel    models.Channel
	configured bool
	err        error
	panics     bool
	calls      []models.Recipient
}

func (f *fakeSender) Channel() models.Channel {
	return f.channel
}

func (f *fakeSender) Configured() bool {
	return f.configured
}

func (f *fakeSender) Send(_ context.Context, recipient models.Recipient, _ models.Content) (string, error) {
	if f.panics {
		panic("provider client not initialized")
	}

	f.calls = append(f.calls, recipient)

	if f.err != nil {
		return "", f.err
	}

	return "msg-1", nil
}

func allSenders() (email, sms, whatsapp, inApp *fakeSender) {
	email = &fakeSender{channel: models.ChannelEmail, configured: true}
	sms = &fakeSender{channel: models.ChannelSMS, configured: true}
	whatsapp = &fakeSender{channel: models.ChannelWhatsApp, configured: true}
	inApp = &fakeSender{channel: models.ChannelInApp, configured: true}

	return email, sms, whatsapp, inApp
}

func TestEffectiveChannelsLowPriority(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	effective := dispatcher.EffectiveChannels(models.PriorityLow, []models.Channel{
		models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp,
	})

	assert.Equal(t, []models.Channel{models.ChannelInApp}, effective)
}

func TestEffectiveChannelsDefaultsToEmail(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	effective := dispatcher.EffectiveChannels(models.PriorityMedium, nil)

	assert.Equal(t, []models.Channel{models.ChannelEmail, models.ChannelInApp}, effective)
}

func TestEffectiveChannelsHighPriority(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	effective := dispatcher.EffectiveChannels(models.PriorityUrgent, []models.Channel{
		models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp,
	})

	assert.Equal(t, []models.Channel{
		models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp, models.ChannelInApp,
	}, effective)
}

func TestEffectiveChannelsWhatsAppUnconfigured(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	whatsapp.configured = false
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	effective := dispatcher.EffectiveChannels(models.PriorityHigh, []models.Channel{models.ChannelWhatsApp})

	assert.Equal(t, []models.Channel{models.ChannelInApp}, effective)
}

func TestDispatchLowPriorityOnlyInApp(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	result := dispatcher.Dispatch(context.Background(), []models.Recipient{
		{UserID: "user-1", Email: "a@b.com", Phone: "+5511987654321"},
	}, models.Content{
		Title:    "Reminder",
		Message:  "Monthly summary available",
		Priority: models.PriorityLow,
	}, []models.Channel{models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp})

	assert.True(t, result.Success)
	assert.Empty(t, email.calls)
	assert.Empty(t, sms.calls)
	assert.Empty(t, whatsapp.calls)
	assert.Len(t, inApp.calls, 1)
	assert.Equal(t, models.ChannelCounts{InApp: 1}, result.Sent)
}

func TestDispatchMissingPhoneSkipsWithoutFailure(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	result := dispatcher.Dispatch(context.Background(), []models.Recipient{
		{Email: "a@b.com"},
	}, models.Content{
		Title:    "Contract expired",
		Message:  "Immediate action required",
		Priority: models.PriorityUrgent,
	}, []models.Channel{models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp})

	assert.True(t, result.Success)
	assert.Equal(t, models.ChannelCounts{Email: 1}, result.Sent)
	assert.Equal(t, models.ChannelCounts{}, result.Failed)
	assert.Empty(t, sms.calls)
	assert.Empty(t, whatsapp.calls)
	assert.Empty(t, result.Errors)
}

func TestDispatchFailureDoesNotStopOtherSends(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	email.err = errors.New("mailbox unavailable")
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	result := dispatcher.Dispatch(context.Background(), []models.Recipient{
		{UserID: "user-1", Email: "a@b.com", Phone: "+5511987654321"},
		{UserID: "user-2", Email: "c@d.com", Phone: "+5511912345678"},
	}, models.Content{
		Title:    "Contract expired",
		Message:  "Immediate action required",
		Priority: models.PriorityHigh,
	}, []models.Channel{models.ChannelEmail, models.ChannelSMS})

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Failed.Email)
	assert.Equal(t, 2, result.Sent.SMS)
	assert.Equal(t, 2, result.Sent.InApp)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "mailbox unavailable")
}

func TestDispatchRecoversSenderPanic(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	email.panics = true
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	result := dispatcher.Dispatch(context.Background(), []models.Recipient{
		{UserID: "user-1", Email: "a@b.com"},
	}, models.Content{
		Title:    "Contract expired",
		Message:  "Immediate action required",
		Priority: models.PriorityMedium,
	}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Failed.Email)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "sender panic")
	assert.Len(t, inApp.calls, 1)
}

func TestDispatchUnaddressableRecipient(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	result := dispatcher.Dispatch(context.Background(), []models.Recipient{
		{Name: "No Address"},
	}, models.Content{
		Title:    "Hello",
		Message:  "World",
		Priority: models.PriorityMedium,
	}, nil)

	assert.True(t, result.Success)
	assert.Zero(t, result.Sent.Total())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no address fields")
}

func TestDispatchUrgentEmailOnlyRecipient(t *testing.T) {
	email, sms, whatsapp, inApp := allSenders()
	dispatcher := NewDispatcher(slog.Default(), email, sms, whatsapp, inApp)

	result := dispatcher.Dispatch(context.Background(), []models.Recipient{
		{Email: "only-email@example.com"},
	}, models.Content{
		Title:    "Contract expired",
		Message:  "Immediate action required",
		Priority: models.PriorityUrgent,
	}, []models.Channel{models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp})

	assert.True(t, result.Success)
	assert.Equal(t, models.DispatchResult{
		Success: true,
		Sent:    models.ChannelCounts{Email: 1},
	}, result)
	assert.Len(t, email.calls, 1)
}
