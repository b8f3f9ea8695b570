package broker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader feeds a fixed sequence of messages and records commits.
type fakeReader struct {
	messages  []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func TestConsumerRetriesWhileUnreachable(t *testing.T) {
	c := NewConsumer([]string{"127.0.0.1:1"}, "order-events", "test-group",
		200*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, func(context.Context, kafka.Message) error { return nil })
	}()

	// Let it cycle through a few probe failures.
	time.Sleep(300 * time.Millisecond)
	assert.NotEqual(t, StateConnected, c.State())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConsumeCommitsAndContinuesPastBadMessage(t *testing.T) {
	c := NewConsumer([]string{"127.0.0.1:1"}, "order-events", "test-group",
		200*time.Millisecond, 50*time.Millisecond)

	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 0, Value: []byte("not json at all")},
		{Offset: 1, Value: []byte(`{"event_type":"order_created"}`)},
	}}

	var handled []int64
	err := c.consume(context.Background(), reader, func(_ context.Context, msg kafka.Message) error {
		handled = append(handled, msg.Offset)
		if msg.Offset == 0 {
			return errors.New("malformed message")
		}
		return nil
	})
	// consume only returns when the fetch itself fails.
	require.ErrorIs(t, err, io.EOF)

	// The failing message is committed and skipped; the next one is handled.
	assert.Equal(t, []int64{0, 1}, handled)
	require.Len(t, reader.committed, 2)
	assert.Equal(t, int64(0), reader.committed[0].Offset)
	assert.Equal(t, int64(1), reader.committed[1].Offset)
}

func TestConsumerStopsImmediatelyOnCancelledContext(t *testing.T) {
	c := NewConsumer([]string{"127.0.0.1:1"}, "order-events", "test-group",
		200*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx, func(context.Context, kafka.Message) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
