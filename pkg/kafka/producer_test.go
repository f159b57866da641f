package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	require.Error(t, err)
}

func TestProducerPublishEncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, comp: "none"}
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "results", []byte("NASDAQ:AAPL"), map[string]string{"status": "ok"}))
	require.NoError(t, p.Publish(ctx, "results", nil, []byte("raw")))
	require.NoError(t, p.PublishMessage(ctx, "logs", "plain"))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "results", w.msgs[0].Topic)
	assert.Equal(t, []byte("NASDAQ:AAPL"), w.msgs[0].Key)
	assert.JSONEq(t, `{"status":"ok"}`, string(w.msgs[0].Value))
	assert.Equal(t, []byte("raw"), w.msgs[1].Value)
	assert.Equal(t, "logs", w.msgs[2].Topic)
	assert.Nil(t, w.msgs[2].Key)
	assert.Equal(t, []byte("plain"), w.msgs[2].Value)
}

func TestProducerPublishBatchHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.PublishBatch(context.Background(), "results", []Message{
		{Key: []byte("a"), Value: "1", Headers: map[string]string{TraceHeader: "req-1"}},
		{Key: []byte("b"), Value: "2"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "req-1", ExtractTraceID(w.msgs[0]))
	assert.Empty(t, ExtractTraceID(w.msgs[1]))
}

func TestProducerPublishBatchEmptyIsNoop(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	p := &Producer{writer: w}
	assert.NoError(t, p.PublishBatch(context.Background(), "results", nil))
}

func TestProducerWrapsWriteError(t *testing.T) {
	cause := errors.New("broker down")
	p := &Producer{writer: &fakeWriter{err: cause}}
	err := p.Publish(context.Background(), "results", nil, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "results")
}

func TestProducerRejectsUnencodableValue(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}}
	err := p.Publish(context.Background(), "results", nil, make(chan int))
	require.Error(t, err)
}

func TestProducerClose(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
}
