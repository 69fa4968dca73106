// Package notification implements multi-channel notification dispatch with
// priority-based channel gating.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/otelhelper"
)

// Dispatcher fans a notification out to the registered channel senders. All
// dependencies are injected so tests can substitute fake senders.
type Dispatcher struct {
	senders    map[models.Channel]channels.Sender
	logger     *slog.Logger
	limiter    Limiter
	tracer     trace.Tracer
	batchSize  int
	batchPause time.Duration
}

func NewDispatcher(logger *slog.Logger, senders ...channels.Sender) *Dispatcher {
	byChannel := make(map[models.Channel]channels.Sender, len(senders))
	for _, sender := range senders {
		byChannel[sender.Channel()] = sender
	}

	return &Dispatcher{
		senders: byChannel,
		logger:  logger.With("module", "notification_dispatcher"),
	}
}

// WithTracer enables span emission around dispatch calls.
func (d *Dispatcher) WithTracer(tracer trace.Tracer) *Dispatcher {
	d.tracer = tracer

	return d
}

// EffectiveChannels computes the channel set actually attempted for the given
// priority, evaluated once per dispatch call:
//
//   - in_app is always included
//   - email requires priority above low, and must be requested unless the
//     requested list is empty
//   - sms requires high or urgent priority and an explicit request
//   - whatsapp additionally requires the sender to report itself configured
//
// The result preserves the fixed delivery order: email, sms, whatsapp, in_app.
func (d *Dispatcher) EffectiveChannels(priority models.Priority, requested []models.Channel) []models.Channel {
	effective := make([]models.Channel, 0, len(models.DeliveryOrder))

	for _, channel := range models.DeliveryOrder {
		switch channel {
		case models.ChannelEmail:
			if priority != models.PriorityLow && (len(requested) == 0 || slices.Contains(requested, models.ChannelEmail)) {
				effective = append(effective, channel)
			}
		case models.ChannelSMS:
			if priority.IsHigh() && slices.Contains(requested, models.ChannelSMS) {
				effective = append(effective, channel)
			}
		case models.ChannelWhatsApp:
			sender, ok := d.senders[models.ChannelWhatsApp]
			if priority.IsHigh() && slices.Contains(requested, models.ChannelWhatsApp) && ok && sender.Configured() {
				effective = append(effective, channel)
			}
		case models.ChannelInApp:
			effective = append(effective, channel)
		}
	}

	return effective
}

// Dispatch sends the content to every recipient over the effective channel
// set and aggregates per-channel counters. Failures are local: one failed
// send never prevents the remaining combinations from being attempted, and
// success is decided once at the end from the failure counters.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []models.Recipient, content models.Content, requestedChannels []models.Channel) models.DispatchResult {
	result := models.DispatchResult{}

	effective := d.EffectiveChannels(content.Priority, requestedChannels)

	var span trace.Span

	if d.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, d.tracer, "notification.dispatch",
			attribute.String(otelhelper.PriorityKey, string(content.Priority)),
			attribute.Int("recipients", len(recipients)),
		)
		defer span.End()
	}

	d.logger.Info("Dispatching notification",
		"recipients", len(recipients),
		"priority", content.Priority,
		"channels", effective)

	for _, recipient := range recipients {
		if !recipient.Addressable() {
			result.Errors = append(result.Errors, "recipient has no address fields")

			continue
		}

		for _, channel := range effective {
			if !hasAddress(recipient, channel) {
				continue
			}

			sender, ok := d.senders[channel]
			if !ok {
				continue
			}

			messageID, err := d.send(ctx, sender, recipient, content)
			if err != nil {
				result.Failed.Add(channel)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", channel, err.Error()))

				if span != nil {
					otelhelper.SetError(span, err,
						attribute.String(otelhelper.ChannelKey, string(channel)),
					)
				}

				d.logger.Warn("Channel delivery failed", "channel", channel, "error", err)

				continue
			}

			result.Sent.Add(channel)

			d.logger.Debug("Channel delivery succeeded", "channel", channel, "message_id", messageID)
		}
	}

	result.Success = result.Failed.Total() == 0

	return result
}

// send invokes one sender, converting a panic into an ordinary error so that
// no failure ever escapes Dispatch.
func (d *Dispatcher) send(ctx context.Context, sender channels.Sender, recipient models.Recipient, content models.Content) (messageID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()

	return sender.Send(ctx, recipient, content)
}

// hasAddress reports whether the recipient carries the address field the
// channel requires. A missing address skips the channel without counting a
// failure.
func hasAddress(recipient models.Recipient, channel models.Channel) bool {
	switch channel {
	case models.ChannelEmail:
		return recipient.Email != ""
	case models.ChannelSMS, models.ChannelWhatsApp:
		return recipient.Phone != ""
	case models.ChannelInApp:
		return recipient.UserID != ""
	default:
		return false
	}
}
