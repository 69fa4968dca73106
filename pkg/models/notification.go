package models

import "time"

// Recipient identifies one addressable target of a notification. At least
// one of UserID, Email or Phone must be populated for any channel to fire.
type Recipient struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Addressable reports whether any address field is populated.
func (r Recipient) Addressable() bool {
	return r.UserID != "" || r.Email != "" || r.Phone != ""
}

// Content is the payload of one notification dispatch.
type Content struct {
	Title     string         `json:"title"    validate:"required"`
	Message   string         `json:"message"  validate:"required"`
	HTML      string         `json:"html,omitempty"`
	Priority  Priority       `json:"priority" validate:"required,oneof=low medium high urgent"`
	Category  string         `json:"category,omitempty"`
	ActionURL string         `json:"action_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ChannelCounts holds one counter per delivery channel.
type ChannelCounts struct {
	Email    int `json:"email"`
	SMS      int `json:"sms"`
	WhatsApp int `json:"whatsapp"`
	InApp    int `json:"in_app"`
}

// Add increments the counter for the given channel.
func (c *ChannelCounts) Add(channel Channel) {
	switch channel {
	case ChannelEmail:
		c.Email++
	case ChannelSMS:
		c.SMS++
	case ChannelWhatsApp:
		c.WhatsApp++
	case ChannelInApp:
		c.InApp++
	}
}

// Total is the sum of all four counters.
func (c ChannelCounts) Total() int {
	return c.Email + c.SMS + c.WhatsApp + c.InApp
}

// DispatchResult aggregates the outcome of one dispatch call. Success is
// true iff every per-channel failure counter is zero.
type DispatchResult struct {
	Success bool          `json:"success"`
	Sent    ChannelCounts `json:"sent"`
	Failed  ChannelCounts `json:"failed"`
	Errors  []string      `json:"errors,omitempty"`
}

// Notification is one persisted in-app notification row.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id" validate:"required"`
	Title     string         `json:"title"   validate:"required"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`
	Category  string         `json:"category,omitempty"`
	ActionURL string         `json:"action_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}
