package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestCollectorAggregatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Topic:          "tascan.logs",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"symbol": "NASDAQ:AAPL"}
	c.AddLog("error", "scan failed", fields, "/internal/usecase/analysis.go:10")
	c.AddLog("error", "scan failed", fields, "/internal/usecase/analysis.go:10")
	c.AddLog("error", "decode failed", nil, "/internal/usecase/analysis.go:20")
	c.Close()

	entries := pub.entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "tascan.logs", pub.topic)

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, 2, counts["scan failed"])
	assert.Equal(t, 1, counts["decode failed"])
}

func TestCollectorFlushesOnThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		Publisher:      pub,
	})
	defer c.Close()

	c.AddLog("error", "a", nil, "x:1")
	c.AddLog("error", "b", nil, "x:2")

	assert.Eventually(t, func() bool { return len(pub.entries()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Publisher: pub})

	l.Error("upstream down", Error(errors.New("dial tcp: refused")), String("screener", "america"))
	l.Info("not collected")
	l.RemoveCollector()

	entries := pub.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "upstream down", entries[0].Message)
	assert.Equal(t, "dial tcp: refused", entries[0].Fields["error"])
	assert.Equal(t, "america", entries[0].Fields["screener"])
}
