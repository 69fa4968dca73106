// Package triggers defines the protocol for components that start workflow
// runs.
package triggers

import "context"

// Callback receives the trigger data for one workflow activation.
type Callback func(ctx context.Context, data map[string]any) error

// Trigger watches an external source and fires the callback once per
// activation.
type Trigger interface {
	Start(ctx context.Context, callback Callback) error
	Stop(ctx context.Context) error
}
