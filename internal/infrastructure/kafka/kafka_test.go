package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader serves queued messages and then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	fetchErrs []error
	fetches   int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	r.fetches++
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func newTestConsumer(reader *fakeReader) *Consumer {
	return &Consumer{reader: reader, logger: zerolog.Nop(), backoff: time.Millisecond}
}

// ============================================
// Producer Tests
// ============================================

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.Publish(context.Background(), "attempt-1", map[string]string{"event_type": "PaymentSucceeded"})

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "attempt-1", string(w.msgs[0].Key))
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "PaymentSucceeded", decoded["event_type"])
}

func TestProducer_Publish_Unmarshalable(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}}

	err := p.Publish(context.Background(), "k", make(chan int))

	assert.Error(t, err)
}

func TestProducer_Publish_WriteError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), "k", "v")

	assert.EqualError(t, err, "broker down")
}

// ============================================
// Consumer Tests
// ============================================

func TestConsumer_HandlesAndCommits(t *testing.T) {
	reader := &fakeReader{
		queue:     []kafka.Message{{Offset: 1, Value: []byte("a")}, {Offset: 2, Value: []byte("b")}},
		fetchErrs: []error{errors.New("transient")},
	}
	c := newTestConsumer(reader)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- c.Consume(ctx, func(ctx context.Context, key, value []byte) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, string(value))
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(reader.commits()) == 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []int64{1, 2}, reader.commits())
}

func TestConsumer_RetriesThenCommits(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Offset: 7, Value: []byte("poison")}}}
	c := newTestConsumer(reader)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	go func() {
		_ = c.Consume(ctx, func(ctx context.Context, key, value []byte) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return errors.New("always fails")
		})
	}()

	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, handlerAttempts, calls)
}

func TestConsumer_BacksOffWhileBrokerDown(t *testing.T) {
	errs := make([]error, 1000)
	for i := range errs {
		errs[i] = errors.New("connection refused")
	}
	reader := &fakeReader{fetchErrs: errs}
	c := &Consumer{reader: reader, logger: zerolog.Nop(), backoff: 50 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.Consume(ctx, func(ctx context.Context, key, value []byte) error { return nil })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.LessOrEqual(t, reader.fetchCount(), 4)
}

func TestLoggingPublisher_SwallowsErrors(t *testing.T) {
	p := NewLoggingPublisher(&Producer{writer: &fakeWriter{err: errors.New("broker down")}}, zerolog.Nop())

	err := p.Publish(context.Background(), "k", "v")

	assert.NoError(t, err)
}
