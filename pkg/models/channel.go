// Package models defines the core domain models for notification dispatch
// and workflow execution.
package models

// Channel is one notification delivery mechanism.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelInApp    Channel = "in_app"
)

// DeliveryOrder is the fixed iteration order for channel sends within one
// dispatch call.
var DeliveryOrder = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelInApp}

// Priority classifies notification urgency and gates which channels fire.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsHigh reports whether the priority unlocks the sms and whatsapp channels.
func (p Priority) IsHigh() bool {
	return p == PriorityHigh || p == PriorityUrgent
}
