// Package email delivers notifications over AWS SES.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
)

// sesClient is the subset of the SES v2 API the sender uses.
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender sends email through AWS SES v2.
type Sender struct {
	client    sesClient
	fromEmail string
	logger    *slog.Logger
}

// NewSender builds the SES sender from the process environment. A missing
// SES_FROM_EMAIL leaves the channel unconfigured rather than failing.
func NewSender(ctx context.Context, logger *slog.Logger) *Sender {
	sender := &Sender{
		fromEmail: os.Getenv("SES_FROM_EMAIL"),
		logger:    logger.With("module", "email_sender"),
	}

	if sender.fromEmail == "" {
		return sender
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		sender.logger.ErrorContext(ctx, "Failed to load AWS configuration, email channel disabled", "error", err)
		sender.fromEmail = ""

		return sender
	}

	sender.client = sesv2.NewFromConfig(cfg)

	return sender
}

// NewSenderWithClient wires an explicit client, used by tests.
func NewSenderWithClient(client sesClient, fromEmail string, logger *slog.Logger) *Sender {
	return &Sender{
		client:    client,
		fromEmail: fromEmail,
		logger:    logger.With("module", "email_sender"),
	}
}

func (s *Sender) Channel() models.Channel {
	return models.ChannelEmail
}

func (s *Sender) Configured() bool {
	return s.fromEmail != "" && s.client != nil
}

// Send delivers one email. The pre-rendered HTML body is preferred when the
// content carries one.
func (s *Sender) Send(ctx context.Context, recipient models.Recipient, content models.Content) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("email: %w", channels.ErrNotConfigured)
	}

	body := &types.Body{}
	if content.HTML != "" {
		body.Html = &types.Content{Data: aws.String(content.HTML)}
	} else {
		body.Text = &types.Content{Data: aws.String(content.Message)}
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{recipient.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(content.Title)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}

	return messageID, nil
}
