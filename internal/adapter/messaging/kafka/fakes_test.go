package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

type produced struct {
	topic   string
	key     []byte
	value   []byte
	headers []kafka.Header
}

func (p produced) header(key string) string {
	for _, h := range p.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

type fakeProducer struct {
	mu   sync.Mutex
	msgs []produced
	err  error
}

func (f *fakeProducer) Produce(_ context.Context, topic string, key, value []byte, headers ...kafka.Header) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, produced{topic: topic, key: key, value: value, headers: headers})
	return nil
}
