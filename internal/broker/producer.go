package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"orderpipeline/internal/models"
	"orderpipeline/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultRetryInterval is the fixed delay between reconnect attempts.
const DefaultRetryInterval = 5 * time.Second

// Producer publishes order lifecycle events. It owns its connectivity state:
// when the broker is unreachable it degrades to a no-op with a warning and
// keeps retrying in the background on a fixed interval. Publishing is
// best-effort from the caller's point of view and never returns an error.
type Producer struct {
	brokers       []string
	topic         string
	probeTimeout  time.Duration
	retryInterval time.Duration
	logger        *zap.Logger

	mu         sync.Mutex
	state      ConnState
	writer     *kafka.Writer
	retryTimer *time.Timer
	closed     bool
}

// NewProducer creates a producer. Call Start to begin connecting; the
// producer is usable (as a warning no-op) before the broker is reachable.
func NewProducer(brokers []string, topic string, probeTimeout, retryInterval time.Duration) *Producer {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	return &Producer{
		brokers:       brokers,
		topic:         topic,
		probeTimeout:  probeTimeout,
		retryInterval: retryInterval,
		logger:        util.GetLogger(),
		state:         StateDisconnected,
	}
}

// Start performs one connect attempt and returns immediately. If the broker
// is unreachable the attempt is rescheduled in the background; Start never
// blocks on broker availability beyond a single probe and handshake.
func (p *Producer) Start() {
	p.tryConnect()
}

// State returns the current connectivity state.
func (p *Producer) State() ConnState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SendEvent publishes an order event keyed by the order id. When the
// producer is not connected it logs a clearly-tagged notice and returns;
// transport failures are logged and swallowed. The orchestrator must never
// fail an already-committed order because of a publish error.
func (p *Producer) SendEvent(ctx context.Context, eventType string, order *models.Order) {
	p.mu.Lock()
	state := p.state
	writer := p.writer
	p.mu.Unlock()

	if state != StateConnected || writer == nil {
		p.logger.Warn("[broker disabled] would have sent order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID))
		util.EventsDroppedTotal.WithLabelValues(eventType).Inc()
		return
	}

	event := models.OrderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Order:     *order,
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
		util.EventsDroppedTotal.WithLabelValues(eventType).Inc()
		return
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: value,
		Time:  event.Timestamp,
	}

	// A write failure after a successful connect does not flip the state
	// back to disconnected; the writer redials on later sends itself.
	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
		util.EventsDroppedTotal.WithLabelValues(eventType).Inc()
		return
	}

	util.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	p.logger.Info("order event published",
		zap.String("event_type", eventType),
		zap.String("order_id", order.ID))
}

// Close stops the retry loop and closes the publish handle.
func (p *Producer) Close() error {
	p.mu.Lock()
	p.closed = true
	if p.retryTimer != nil {
		p.retryTimer.Stop()
		p.retryTimer = nil
	}
	writer := p.writer
	p.writer = nil
	p.state = StateDisconnected
	p.mu.Unlock()

	if writer != nil {
		return writer.Close()
	}
	return nil
}

// tryConnect runs one full connect sequence: probe, ensure topic, open
// writer. Any failure is treated like unreachability and schedules the next
// attempt. Attempts never overlap: failAndReschedule arms at most one timer
// and the timer callback is the only other caller.
func (p *Producer) tryConnect() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.state = StateProbing
	p.mu.Unlock()

	addr := p.brokers[0]
	if !Probe(addr, p.probeTimeout) {
		p.logger.Warn("kafka broker unreachable, will retry in background",
			zap.String("addr", addr),
			zap.Duration("retry_in", p.retryInterval))
		util.BrokerReconnectsTotal.WithLabelValues("producer", "unreachable").Inc()
		p.failAndReschedule()
		return
	}

	if err := p.ensureTopic(); err != nil {
		p.logger.Warn("failed to ensure kafka topic, will retry in background",
			zap.String("topic", p.topic),
			zap.Error(err))
		util.BrokerReconnectsTotal.WithLabelValues("producer", "topic_error").Inc()
		p.failAndReschedule()
		return
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        p.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = writer.Close()
		return
	}
	p.writer = writer
	p.state = StateConnected
	p.mu.Unlock()

	util.BrokerReconnectsTotal.WithLabelValues("producer", "connected").Inc()
	p.logger.Info("kafka producer connected", zap.String("topic", p.topic))
}

func (p *Producer) failAndReschedule() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateDisconnected
	if p.closed || p.retryTimer != nil {
		return
	}
	p.retryTimer = time.AfterFunc(p.retryInterval, func() {
		p.mu.Lock()
		p.retryTimer = nil
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return
		}
		p.logger.Info("retrying kafka producer connection")
		p.tryConnect()
	})
}

// ensureTopic creates the topic with a minimal configuration when it does
// not exist yet.
func (p *Producer) ensureTopic() error {
	conn, err := kafka.Dial("tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to resolve controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             p.topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}
