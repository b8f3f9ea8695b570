package broker

import (
	"context"
	"sync"
	"time"

	"orderpipeline/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one fetched message. A handler error is logged
// and the message is committed anyway; one bad message must never wedge or
// kill the consume loop.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// messageReader is the slice of the kafka reader the consume loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ messageReader = (*kafka.Reader)(nil)

// Consumer subscribes to the order-events topic. Connecting is guarded by
// the same probe-then-handshake pattern as the producer, and any
// disconnection falls back to the fixed-interval retry loop.
type Consumer struct {
	brokers       []string
	topic         string
	groupID       string
	probeTimeout  time.Duration
	retryInterval time.Duration
	logger        *zap.Logger

	mu    sync.Mutex
	state ConnState
}

// NewConsumer creates a consumer for the given group.
func NewConsumer(brokers []string, topic, groupID string, probeTimeout, retryInterval time.Duration) *Consumer {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	return &Consumer{
		brokers:       brokers,
		topic:         topic,
		groupID:       groupID,
		probeTimeout:  probeTimeout,
		retryInterval: retryInterval,
		logger:        util.GetLogger(),
		state:         StateDisconnected,
	}
}

// State returns the current connectivity state.
func (c *Consumer) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Consumer) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run consumes until ctx is cancelled. Each pass probes the broker first;
// when it is unreachable, or the reader later fails, the loop waits the
// fixed retry interval and starts over. Run only returns the context error.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("starting kafka consumer",
		zap.String("topic", c.topic),
		zap.String("group", c.groupID))

	for {
		if err := ctx.Err(); err != nil {
			c.setState(StateDisconnected)
			return err
		}

		c.setState(StateProbing)
		if !Probe(c.brokers[0], c.probeTimeout) {
			c.logger.Warn("kafka broker unreachable, consumer will retry",
				zap.String("addr", c.brokers[0]),
				zap.Duration("retry_in", c.retryInterval))
			util.BrokerReconnectsTotal.WithLabelValues("consumer", "unreachable").Inc()
			c.setState(StateDisconnected)
			if !sleepCtx(ctx, c.retryInterval) {
				return ctx.Err()
			}
			continue
		}

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        c.brokers,
			Topic:          c.topic,
			GroupID:        c.groupID,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			StartOffset:    kafka.FirstOffset,
		})

		c.setState(StateConnected)
		util.BrokerReconnectsTotal.WithLabelValues("consumer", "connected").Inc()
		c.logger.Info("kafka consumer connected", zap.String("topic", c.topic))

		err := c.consume(ctx, reader, handler)
		_ = reader.Close()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()
		}

		c.logger.Warn("kafka consumer disconnected, will retry",
			zap.Error(err),
			zap.Duration("retry_in", c.retryInterval))
		if !sleepCtx(ctx, c.retryInterval) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, reader messageReader, handler MessageHandler) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("error handling message, skipping",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("error committing message", zap.Error(err))
		}
	}
}

// sleepCtx waits d or until ctx is cancelled; reports whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
