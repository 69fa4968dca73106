// Package sms delivers notifications over the Twilio Messages API.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
)

const (
	defaultBaseURL = "https://api.twilio.com"
	sendTimeout    = 30 * time.Second
)

// Sender sends SMS through Twilio's REST API.
type Sender struct {
	accountSID   string
	authToken    string
	from         string
	businessName string
	baseURL      string
	client       *http.Client
	logger       *slog.Logger
}

// NewSender builds the SMS sender from the process environment. Missing
// credentials leave the channel unconfigured rather than failing.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{
		accountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		from:         os.Getenv("TWILIO_SMS_FROM"),
		businessName: os.Getenv("BUSINESS_NAME"),
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: sendTimeout},
		logger:       logger.With("module", "sms_sender"),
	}
}

// WithBaseURL overrides the Twilio endpoint, used by tests.
func (s *Sender) WithBaseURL(baseURL string) *Sender {
	s.baseURL = strings.TrimSuffix(baseURL, "/")

	return s
}

func (s *Sender) Channel() models.Channel {
	return models.ChannelSMS
}

func (s *Sender) Configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

// Send delivers one SMS. The phone number is validated before any provider
// call; the business name, when configured, is prepended to the body.
func (s *Sender) Send(ctx context.Context, recipient models.Recipient, content models.Content) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("sms: %w", channels.ErrNotConfigured)
	}

	if !channels.ValidPhoneNumber(recipient.Phone) {
		return "", channels.ErrInvalidPhoneNumber
	}

	form := url.Values{}
	form.Set("To", recipient.Phone)
	form.Set("From", s.from)
	form.Set("Body", s.messageBody(content))

	return s.postMessage(ctx, form)
}

func (s *Sender) messageBody(content models.Content) string {
	body := content.Message
	if body == "" {
		body = content.Title
	}

	if s.businessName != "" {
		body = fmt.Sprintf("[%s] %s", s.businessName, body)
	}

	return body
}

// postMessage performs one authenticated form POST against the Messages
// endpoint and extracts the provider message SID.
func (s *Sender) postMessage(ctx context.Context, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create twilio request: %w", err)
	}

	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio returned %s: %s", resp.Status, twilioErrorMessage(bodyBytes))
	}

	var payload struct {
		SID string `json:"sid"`
	}

	err = json.Unmarshal(bodyBytes, &payload)
	if err != nil {
		s.logger.Warn("Failed to parse twilio response", "error", err)

		return "", nil
	}

	return payload.SID, nil
}

func twilioErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}

	err := json.Unmarshal(body, &payload)
	if err != nil || payload.Message == "" {
		return string(body)
	}

	return payload.Message
}
