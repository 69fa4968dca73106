package models

import "time"

// TriggerType classifies how a workflow run is started.
type TriggerType string

const (
	TriggerTypeEvent     TriggerType = "event"
	TriggerTypeSchedule  TriggerType = "schedule"
	TriggerTypeManual    TriggerType = "manual"
	TriggerTypeCondition TriggerType = "condition"
)

// Workflow is a named, versioned step sequence. Definitions are read-only at
// execution time; the runner never mutates them.
type Workflow struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"         validate:"required,min=3"`
	Description   string         `json:"description"`
	Version       int            `json:"version"`
	TriggerType   TriggerType    `json:"trigger_type" validate:"required,oneof=event schedule manual condition"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
	Active        bool           `json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
