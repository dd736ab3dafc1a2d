package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"petsitter/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("sitter-1").
		WithValue(map[string]string{"type": "new_booking_request"}).
		WithEventType("notification.created").
		WithCorrelationID("req-1").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "sitter-1", msg.Key)
	assert.JSONEq(t, `{"type":"new_booking_request"}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	_, err = NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestRetryCountHeader(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "notifications", log: logger.Discard()}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("owner-1").WithValue("hi").WithEventID("evt-1").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, "notifications", seenTopic)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "owner-1", string(w.messages[0].Key))
	assert.Equal(t, "evt-1", header(w.messages[0], HeaderEventID))

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), msg), ErrProducerClosed)
}

func TestProducerFailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("connection refused")
	dlq := &fakeWriter{}
	p := &Producer{writer: &fakeWriter{err: writeErr}, dlqWriter: dlq, topic: "notifications", log: logger.Discard()}

	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	err := p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, writeErr)

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "notifications", header(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, "connection refused", header(dlq.messages[0], HeaderDLQError))
}

func TestConsumerRetriesTransientErrors(t *testing.T) {
	calls := 0
	c := &Consumer{
		topic:      "notifications",
		maxRetries: 3,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			if calls < 3 {
				return NewTransientError("store", errors.New("timeout"))
			}
			return nil
		},
	}

	require.NoError(t, c.processMessage(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, 3, calls)
}

func TestConsumerPermanentErrorSkipsRetries(t *testing.T) {
	calls := 0
	dlq := &fakeWriter{}
	c := &Consumer{
		topic:      "notifications",
		groupID:    "petsitter-notifier",
		maxRetries: 3,
		dlqWriter:  dlq,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			return NewPermanentError("decode", errors.New("bad json"))
		},
	}

	err := c.processMessage(context.Background(), Message{Key: "k", Headers: map[string]string{HeaderEventID: "evt-9"}})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "evt-9", header(dlq.messages[0], HeaderEventID))
	assert.Equal(t, "petsitter-notifier", header(dlq.messages[0], HeaderDLQGroup))
}

func TestConsumerGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	dlq := &fakeWriter{}
	c := &Consumer{
		topic:      "notifications",
		maxRetries: 2,
		dlqWriter:  dlq,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			return errors.New("i/o timeout")
		},
	}

	require.Error(t, c.processMessage(context.Background(), Message{Key: "k", Headers: map[string]string{}}))
	assert.Equal(t, 3, calls)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "2", header(dlq.messages[0], HeaderRetryCount))
}

func TestConsumerMiddlewareOrder(t *testing.T) {
	var order []string
	c := &Consumer{
		log: logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			order = append(order, "handler")
			return nil
		},
	}
	for _, name := range []string{"first", "second"} {
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, c.processMessage(context.Background(), Message{}))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{errors.New("context deadline exceeded"), ErrorTypeTransient},
		{errors.New("invalid character 'x'"), ErrorTypePermanent},
		{NewTransientError("x", nil), ErrorTypeTransient},
		{NewPermanentError("timeout in name only", nil), ErrorTypePermanent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err), "%v", tt.err)
	}
}
