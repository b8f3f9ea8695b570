package worker

import (
	"context"

	"orderpipeline/internal/broker"
	"orderpipeline/internal/models"
	"orderpipeline/internal/notifier"
	"orderpipeline/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RelayWorker is the order service's own subscription to the order-events
// topic: it observes every event and logs it. Malformed messages are
// skipped, never fatal.
type RelayWorker struct {
	consumer *broker.Consumer
	logger   *zap.Logger
}

// NewRelayWorker creates a new relay worker
func NewRelayWorker(consumer *broker.Consumer) *RelayWorker {
	return &RelayWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}
}

// Start consumes until ctx is cancelled.
func (w *RelayWorker) Start(ctx context.Context) error {
	return w.consumer.Run(ctx, func(_ context.Context, msg kafka.Message) error {
		event, err := models.ParseOrderEvent(msg.Value)
		if err != nil {
			return err
		}

		util.EventsConsumedTotal.WithLabelValues(event.EventType).Inc()
		w.logger.Info("order event received",
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.Order.ID),
			zap.String("status", event.Order.Status))
		return nil
	})
}

// NotificationWorker feeds order events into the enrichment-and-notify
// pipeline of the notification service.
type NotificationWorker struct {
	consumer *broker.Consumer
	enricher *notifier.Enricher
	logger   *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, enricher *notifier.Enricher) *NotificationWorker {
	return &NotificationWorker{
		consumer: consumer,
		enricher: enricher,
		logger:   util.GetLogger(),
	}
}

// Start consumes until ctx is cancelled. Parse failures and handler errors
// are isolated to the offending message.
func (w *NotificationWorker) Start(ctx context.Context) error {
	return w.consumer.Run(ctx, func(ctx context.Context, msg kafka.Message) error {
		event, err := models.ParseOrderEvent(msg.Value)
		if err != nil {
			return err
		}
		return w.enricher.HandleEvent(ctx, event)
	})
}
