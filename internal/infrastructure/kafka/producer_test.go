package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducerProduce(t *testing.T) {
	fw := &fakeWriter{}
	p := NewProducerWithWriter(fw, zerolog.Nop())

	err := p.Produce(context.Background(), "payment.domain-events", []byte("corr-1"), []byte(`{}`),
		kafka.Header{Key: "event-type", Value: []byte("payment.success")})
	require.NoError(t, err)

	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "payment.domain-events", fw.msgs[0].Topic)
	assert.Equal(t, []byte("corr-1"), fw.msgs[0].Key)
	assert.Equal(t, "event-type", fw.msgs[0].Headers[0].Key)
}

func TestProducerProduceError(t *testing.T) {
	brokerErr := errors.New("leader not available")
	p := NewProducerWithWriter(&fakeWriter{err: brokerErr}, zerolog.Nop())

	err := p.Produce(context.Background(), "t", nil, []byte(`{}`))
	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "t")
}

func TestProducerClose(t *testing.T) {
	fw := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(fw, zerolog.Nop()).Close())
	assert.True(t, fw.closed)
}
