// Package channels defines the notification channel sender contract and the
// shared validation applied before provider calls.
package channels

import (
	"context"
	"errors"
	"regexp"

	"github.com/contractpulse/pulse/pkg/models"
)

var (
	// ErrNotConfigured is returned when a channel's provider credentials are
	// missing from the environment.
	ErrNotConfigured = errors.New("channel not configured")

	// ErrInvalidPhoneNumber is returned before any provider call when the
	// recipient's phone number fails format validation.
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")

	// ErrMissingUserID is returned by the in-app channel when the recipient
	// has no user ID to key the row on.
	ErrMissingUserID = errors.New("recipient has no user id")
)

// E.164-ish: optional +, no leading zero, 8 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

// ValidPhoneNumber reports whether the number is acceptable for sms/whatsapp
// delivery.
func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Sender delivers one notification to one recipient over one channel. Send
// returns the provider's message ID when available. Implementations never
// retry; a failure is reported once and the dispatcher moves on.
type Sender interface {
	Channel() models.Channel
	Configured() bool
	Send(ctx context.Context, recipient models.Recipient, content models.Content) (string, error)
}
