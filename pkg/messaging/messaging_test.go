package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestPublish_SetsKeyTopicAndHeaders(t *testing.T) {
	prod := &fakeProducer{}
	pub := NewPublisher(discard, prod, nil)

	require.NoError(t, pub.Publish(context.Background(), "order-created", "42", "OrderCreated", []byte(`{}`)))

	require.Len(t, prod.msgs, 1)
	m := prod.msgs[0]
	assert.Equal(t, "order-created", m.Topic)
	assert.Equal(t, []byte("42"), m.Key)
	assert.Equal(t, []byte(`{}`), m.Value)
	assert.Contains(t, m.Headers, kafka.Header{Key: HeaderEventType, Value: []byte("OrderCreated")})
}

func TestPublish_RejectsEmptyKey(t *testing.T) {
	pub := NewPublisher(discard, &fakeProducer{}, nil)
	assert.ErrorIs(t, pub.Publish(context.Background(), "t", "", "E", nil), ErrEmptyKey)
}

func TestPublish_ReturnsHandOffError(t *testing.T) {
	pub := NewPublisher(discard, &fakeProducer{err: errors.New("closed")}, nil)
	assert.Error(t, pub.Publish(context.Background(), "t", "1", "E", nil))
}

func TestNewWriter_IsAsyncAndKeyed(t *testing.T) {
	w := NewWriter(discard, []string{"localhost:9092"}, nil)
	defer w.Close()

	assert.True(t, w.Async)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.NotNil(t, w.Completion)
	assert.NotPanics(t, func() {
		w.Completion([]kafka.Message{{Topic: "t", Key: []byte("1")}}, errors.New("boom"))
	})
}

// fakeReader serves queued messages, then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumer_CommitsEvenWhenHandlerFails(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Key: []byte("1"), Offset: 0},
		{Key: []byte("2"), Offset: 1},
		{Key: []byte("3"), Offset: 2},
	}}

	var mu sync.Mutex
	var seen []string
	handler := HandlerFunc(func(_ context.Context, msg kafka.Message) error {
		mu.Lock()
		seen = append(seen, string(msg.Key))
		mu.Unlock()
		switch string(msg.Key) {
		case "2":
			return errors.New("store down")
		case "3":
			panic("bad payload")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewConsumer(discard, "test", reader, handler).Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == 3 }, time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.True(t, reader.closed)
	mu.Lock()
	assert.Equal(t, []string{"1", "2", "3"}, seen)
	mu.Unlock()
}

type failingReader struct{ fakeReader }

func (r *failingReader) FetchMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, io.ErrUnexpectedEOF
}

func TestConsumer_ReturnsFetchError(t *testing.T) {
	err := NewConsumer(discard, "test", &failingReader{}, HandlerFunc(func(context.Context, kafka.Message) error { return nil })).
		Run(context.Background())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
