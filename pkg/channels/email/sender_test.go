package email

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
)

type fakeSESClient struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSESClient) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params

	if f.err != nil {
		return nil, f.err
	}

	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSender_Send(t *testing.T) {
	client := &fakeSESClient{}
	sender := NewSenderWithClient(client, "noreply@contractpulse.io", slog.Default())

	id, err := sender.Send(context.Background(), models.Recipient{Email: "maria@example.com"}, models.Content{
		Title:    "Contract ready",
		Message:  "Your contract is ready for signature",
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)

	require.NotNil(t, client.input)
	assert.Equal(t, "noreply@contractpulse.io", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"maria@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Contract ready", *client.input.Content.Simple.Subject.Data)
	assert.Equal(t, "Your contract is ready for signature", *client.input.Content.Simple.Body.Text.Data)
	assert.Nil(t, client.input.Content.Simple.Body.Html)
}

func TestSender_Send_PrefersHTML(t *testing.T) {
	client := &fakeSESClient{}
	sender := NewSenderWithClient(client, "noreply@contractpulse.io", slog.Default())

	_, err := sender.Send(context.Background(), models.Recipient{Email: "maria@example.com"}, models.Content{
		Title:   "Contract ready",
		Message: "plain fallback",
		HTML:    "<p>Your contract is ready</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input.Content.Simple.Body.Html)
	assert.Equal(t, "<p>Your contract is ready</p>", *client.input.Content.Simple.Body.Html.Data)
	assert.Nil(t, client.input.Content.Simple.Body.Text)
}

func TestSender_Send_Unconfigured(t *testing.T) {
	sender := NewSenderWithClient(nil, "", slog.Default())

	assert.False(t, sender.Configured())

	_, err := sender.Send(context.Background(), models.Recipient{Email: "maria@example.com"}, models.Content{
		Title: "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, channels.ErrNotConfigured)
}

func TestSender_Send_ProviderError(t *testing.T) {
	client := &fakeSESClient{err: errors.New("throttled")}
	sender := NewSenderWithClient(client, "noreply@contractpulse.io", slog.Default())

	_, err := sender.Send(context.Background(), models.Recipient{Email: "maria@example.com"}, models.Content{
		Title: "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ses send failed")
}
