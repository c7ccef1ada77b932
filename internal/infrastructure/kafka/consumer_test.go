package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func runConsumer(t *testing.T, c *Consumer, handler MessageHandler, until func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, handler) }()

	require.Eventually(t, until, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "payment.callbacks", Offset: 1},
		kafka.Message{Topic: "payment.callbacks", Offset: 2},
	)
	c := NewConsumerWithReaders([]MessageReader{reader}, "payment.callbacks", time.Second, zerolog.Nop(), nil)

	var mu sync.Mutex
	var handled []int64
	handler := func(ctx context.Context, msg kafka.Message) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		mu.Lock()
		handled = append(handled, msg.Offset)
		mu.Unlock()
		return nil
	}

	runConsumer(t, c, handler, func() bool { return len(reader.Committed()) == 2 })

	assert.Equal(t, []int64{1, 2}, handled)
	assert.Equal(t, []int64{1, 2}, reader.Committed())
	assert.True(t, reader.closed)
}

func TestConsumerRetriesBeforeCommit(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "payment.callbacks", Offset: 7})
	m := metrics.New(prometheus.NewRegistry())
	c := NewConsumerWithReaders([]MessageReader{reader}, "payment.callbacks", time.Second, zerolog.Nop(), m)
	c.retryInterval = time.Millisecond

	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, msg kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			assert.Empty(t, reader.Committed(), "offset committed before handler succeeded")
			return errors.New("database unavailable")
		}
		return nil
	}

	runConsumer(t, c, handler, func() bool { return len(reader.Committed()) == 1 })

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesConsumed.WithLabelValues("payment.callbacks", "error")))
}

func TestConsumerLeavesOffsetOnShutdown(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "payment.callbacks", Offset: 3})
	c := NewConsumerWithReaders([]MessageReader{reader}, "payment.callbacks", time.Second, zerolog.Nop(), nil)
	c.retryInterval = time.Millisecond

	var mu sync.Mutex
	calls := 0
	handler := func(ctx context.Context, msg kafka.Message) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return errors.New("always failing")
	}

	runConsumer(t, c, handler, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	})

	assert.Empty(t, reader.Committed())
}

func TestConsumerRunsEveryWorker(t *testing.T) {
	readers := []*fakeReader{
		newFakeReader(kafka.Message{Partition: 0, Offset: 1}),
		newFakeReader(kafka.Message{Partition: 1, Offset: 1}),
		newFakeReader(kafka.Message{Partition: 2, Offset: 1}),
	}
	var mr []MessageReader
	for _, r := range readers {
		mr = append(mr, r)
	}
	c := NewConsumerWithReaders(mr, "payment.callbacks", time.Second, zerolog.Nop(), nil)

	handler := func(ctx context.Context, msg kafka.Message) error { return nil }

	runConsumer(t, c, handler, func() bool {
		for _, r := range readers {
			if len(r.Committed()) != 1 {
				return false
			}
		}
		return true
	})

	for _, r := range readers {
		assert.True(t, r.closed)
	}
}
