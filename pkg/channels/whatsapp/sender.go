// Package whatsapp delivers notifications over Twilio's WhatsApp channel.
package whatsapp

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

// Sender sends WhatsApp messages through Twilio. When a content template SID
// is configured, messages go out as approved template sends instead of
// free-form body text.
type Sender struct {
	accountSID  string
	authToken   string
	from        string
	templateSID string
	baseURL     string
	client      *http.Client
	logger      *slog.Logger
}

// NewSender builds the WhatsApp sender from the process environment.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{
		accountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		from:        os.Getenv("TWILIO_WHATSAPP_FROM"),
		templateSID: os.Getenv("WHATSAPP_TEMPLATE_SID"),
		baseURL:     defaultBaseURL,
		client:      &http.Client{Timeout: sendTimeout},
		logger:      logger.With("module", "whatsapp_sender"),
	}
}

// WithBaseURL overrides the Twilio endpoint, used by tests.
func (s *Sender) WithBaseURL(baseURL string) *Sender {
	s.baseURL = strings.TrimSuffix(baseURL, "/")

	return s
}

func (s *Sender) Channel() models.Channel {
	return models.ChannelWhatsApp
}

func (s *Sender) Configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

func (s *Sender) Send(ctx context.Context, recipient models.Recipient, content models.Content) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("whatsapp: %w", channels.ErrNotConfigured)
	}

	if !channels.ValidPhoneNumber(recipient.Phone) {
		return "", channels.ErrInvalidPhoneNumber
	}

	form := url.Values{}
	form.Set("To", whatsappAddress(recipient.Phone))
	form.Set("From", whatsappAddress(s.from))

	if s.templateSID != "" {
		variables, err := json.Marshal(map[string]string{
			"1": content.Title,
			"2": content.Message,
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode template variables: %w", err)
		}

		form.Set("ContentSid", s.templateSID)
		form.Set("ContentVariables", string(variables))
	} else {
		body := content.Message
		if content.Title != "" {
			body = fmt.Sprintf("*%s*\n\n%s", content.Title, content.Message)
		}

		form.Set("Body", body)
	}

	return s.postMessage(ctx, form)
}

// whatsappAddress prefixes the channel scheme Twilio expects.
func whatsappAddress(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}

	return "whatsapp:" + phone
}

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
		return "", fmt.Errorf("twilio returned %s: %s", resp.Status, strings.TrimSpace(string(bodyBytes)))
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
