package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/contractpulse/pulse/pkg/models"
)

// Provider rate limits are respected two ways: recipients are sent in small
// batches with a fixed pause between batches, and an optional Limiter can
// reject individual sends when a shared sliding window fills up.
const (
	defaultBatchSize  = 10
	defaultBatchPause = time.Second
)

// WithLimiter installs a shared rate limiter consulted by bulk sends.
func (d *Dispatcher) WithLimiter(limiter Limiter) *Dispatcher {
	d.limiter = limiter

	return d
}

// WithBatching overrides the bulk batch size and inter-batch pause.
func (d *Dispatcher) WithBatching(size int, pause time.Duration) *Dispatcher {
	if size > 0 {
		d.batchSize = size
	}

	d.batchPause = pause

	return d
}

// SendBulkSMS delivers one message to many phone recipients over SMS.
func (d *Dispatcher) SendBulkSMS(ctx context.Context, recipients []models.Recipient, content models.Content) models.DispatchResult {
	return d.sendBulk(ctx, models.ChannelSMS, recipients, content)
}

// SendBulkWhatsApp delivers one message to many phone recipients over WhatsApp.
func (d *Dispatcher) SendBulkWhatsApp(ctx context.Context, recipients []models.Recipient, content models.Content) models.DispatchResult {
	return d.sendBulk(ctx, models.ChannelWhatsApp, recipients, content)
}

func (d *Dispatcher) sendBulk(ctx context.Context, channel models.Channel, recipients []models.Recipient, content models.Content) models.DispatchResult {
	result := models.DispatchResult{}

	sender, ok := d.senders[channel]
	if !ok || !sender.Configured() {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: channel not configured", channel))

		return result
	}

	batchSize := d.batchSize
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}

	pause := d.batchPause
	if pause == 0 {
		pause = defaultBatchPause
	}

	for start := 0; start < len(recipients); start += batchSize {
		end := min(start+batchSize, len(recipients))

		for _, recipient := range recipients[start:end] {
			if recipient.Phone == "" {
				continue
			}

			allowed, err := d.allow(ctx, channel)
			if err != nil || !allowed {
				result.Failed.Add(channel)

				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", channel, err.Error()))
				} else {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: rate limit exceeded", channel))
				}

				continue
			}

			_, err = d.send(ctx, sender, recipient, content)
			if err != nil {
				result.Failed.Add(channel)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", channel, err.Error()))

				continue
			}

			result.Sent.Add(channel)
		}

		if end < len(recipients) {
			select {
			case <-ctx.Done():
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", channel, ctx.Err().Error()))
				result.Success = result.Failed.Total() == 0

				return result
			case <-time.After(pause):
			}
		}
	}

	result.Success = result.Failed.Total() == 0

	return result
}

func (d *Dispatcher) allow(ctx context.Context, channel models.Channel) (bool, error) {
	if d.limiter == nil {
		return true, nil
	}

	return d.limiter.Allow(ctx, "pulse:bulk:"+string(channel))
}
