package kafka

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	applogger "TAScan/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// PermanentError marks a handler failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the consumer skips retries and dead-letters the message.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps Kafka readers with a worker pool. Every (topic, partition) is
// pinned to one worker queue, so a partition is handled and committed in offset order.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *applogger.Logger
	readers  map[string]messageReader
	handlers map[string]MessageHandler
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	queues   []chan *message
	dlq      messageWriter
	hook     ConsumerHook
}

type message struct {
	topic string
	data  []byte
	km    kafka.Message
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "tascan",
		WorkerCount: 1,
		BufferSize:  10,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	c := newConsumer(cfg)
	initConsumerMetrics()

	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}

	return c, nil
}

func newConsumer(cfg *ConsumerConfig) *Consumer {
	l := cfg.Logger
	if l == nil {
		l = applogger.NewNop()
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	queues := make([]chan *message, cfg.WorkerCount)
	for i := range queues {
		queues[i] = make(chan *message, cfg.BufferSize)
	}
	return &Consumer{
		cfg:      cfg,
		log:      l.With(applogger.String("component", "kafka_consumer")),
		readers:  make(map[string]messageReader),
		handlers: make(map[string]MessageHandler),
		stopChan: make(chan struct{}),
		queues:   queues,
		hook:     NoopHook{},
	}
}

// RegisterHandler registers a message handler for a specific topic.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// WithConsumerHook sets a hook implementation for lifecycle events.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// Start creates readers for registered topics and launches workers.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	for topic := range c.handlers {
		if _, ok := c.readers[topic]; ok {
			continue
		}
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
		c.log.Info("registered topic", applogger.String("topic", topic), applogger.String("group", c.cfg.GroupID))
	}
	c.launch()
	return nil
}

func (c *Consumer) launch() {
	for _, q := range c.queues {
		c.wg.Add(1)
		go c.messageWorker(q)
	}
	for topic, reader := range c.readers {
		c.wg.Add(1)
		go c.consumeMessages(topic, reader)
	}
	c.log.Info("consumer started", applogger.Int("workers", c.cfg.WorkerCount), applogger.Int("topics", len(c.readers)))
}

// Run starts the consumer and blocks until ctx is cancelled, then stops it.
func (c *Consumer) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := c.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-c.stopChan:
		return nil
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return c.Stop(sctx)
}

// Stop stops the Kafka consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error

	c.stopOnce.Do(func() {
		c.log.Info("consumer stopping")
		close(c.stopChan)

		// Readers and workers both exit on stopChan.
		stopErr = c.waitForWg(ctx)

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.log.Error("close reader failed", applogger.String("topic", topic), applogger.Error(err))
			}
		}
		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Error("close dlq writer failed", applogger.Error(err))
			}
		}
		if stopErr == nil {
			c.log.Info("consumer stopped")
		}
	})

	return stopErr
}

func (c *Consumer) waitForWg(ctx context.Context) error {
	doneChan := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(doneChan)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
	case <-doneChan:
		return nil
	}
}

func (c *Consumer) consumeMessages(topic string, reader messageReader) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		msg, err := reader.FetchMessage(ctx)
		cancel()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				c.log.Error("fetch message failed", applogger.String("topic", topic), applogger.Error(err))
				select {
				case <-time.After(100 * time.Millisecond):
				case <-c.stopChan:
					return
				}
			}
			continue
		}

		if !c.enqueue(&message{topic: topic, data: msg.Value, km: msg}) {
			return
		}
	}
}

// queueFor returns the worker queue owning the message's partition.
func (c *Consumer) queueFor(topic string, partition int) chan *message {
	h := fnv.New32a()
	_, _ = h.Write([]byte(topic))
	n := uint32(len(c.queues))
	return c.queues[(h.Sum32()%n+uint32(partition)%n)%n]
}

// enqueue applies backpressure instead of dropping. Returns false on stop.
func (c *Consumer) enqueue(m *message) bool {
	q := c.queueFor(m.topic, m.km.Partition)
	for {
		select {
		case q <- m:
			observeQueue(m.topic, len(q), cap(q))
			return true
		case <-c.stopChan:
			return false
		default:
			full := float64(len(q)) / float64(cap(q))
			if full > 0.8 {
				time.Sleep(10 * time.Millisecond)
			} else {
				runtime.Gosched()
			}
		}
	}
}

// messageWorker processes its queue one message at a time.
func (c *Consumer) messageWorker(q <-chan *message) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopChan:
			return
		case msg := <-q:
			c.process(msg)
		}
	}
}

// process runs the handler with retries, dead-letters failures and commits.
func (c *Consumer) process(msg *message) {
	handler, ok := c.handlers[msg.topic]
	if !ok {
		return
	}
	start := time.Now()

	attempts, stopped, err := c.handleWithRetry(handler, msg)
	if stopped {
		return
	}

	result := "ok"
	if err != nil {
		result = "failed"
		c.hook.OnError(context.Background(), msg.topic, msg.km, msg.data, err)
		c.log.Error("message handling failed",
			applogger.String("topic", msg.topic),
			applogger.Int("partition", msg.km.Partition),
			applogger.Int64("offset", msg.km.Offset),
			applogger.Int("attempts", attempts),
			applogger.Bool("permanent", IsPermanent(err)),
			applogger.Error(err),
		)
		if c.dlq != nil && c.cfg.DLQTopic != "" {
			result = "dead_lettered"
			c.deadLetter(msg, err)
		}
	}

	// Commit on success or after DLQ to avoid poison loops.
	if err == nil || (c.dlq != nil && c.cfg.DLQTopic != "") {
		if reader := c.readers[msg.topic]; reader != nil {
			_ = c.commitWithRetry(reader, msg.km, 3)
		}
	}
	observeHandled(msg.topic, result, time.Since(start))
}

func (c *Consumer) handleWithRetry(handler MessageHandler, msg *message) (attempts int, stopped bool, err error) {
	for {
		attempts++
		hctx, hmsg, hdata, berr := c.hook.BeforeHandle(context.Background(), msg.topic, msg.km, msg.data)
		if berr != nil {
			return attempts, false, berr
		}

		err = safeHandle(handler, hctx, hdata)
		c.hook.AfterHandle(hctx, msg.topic, hmsg, hdata, err)
		if err == nil || IsPermanent(err) || attempts > c.cfg.RetryMax {
			return attempts, false, err
		}
		c.hook.OnError(hctx, msg.topic, hmsg, hdata, err)

		sleep := backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempts)
		select {
		case <-time.After(sleep):
		case <-c.stopChan:
			return attempts, true, err
		}
	}
}

func safeHandle(handler MessageHandler, ctx context.Context, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return handler.Handle(ctx, data)
}

func (c *Consumer) deadLetter(msg *message, cause error) {
	headers := []kafka.Header{
		{Key: "source_topic", Value: []byte(msg.topic)},
		{Key: "error", Value: []byte(cause.Error())},
	}
	if id := ExtractTraceID(msg.km); id != "" {
		headers = append(headers, kafka.Header{Key: TraceHeader, Value: []byte(id)})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.dlq.WriteMessages(ctx, kafka.Message{
		Topic:   c.cfg.DLQTopic,
		Key:     msg.km.Key,
		Value:   msg.data,
		Time:    time.Now(),
		Headers: headers,
	}); err != nil {
		c.log.Error("dlq write failed", applogger.String("dlq_topic", c.cfg.DLQTopic), applogger.Error(err))
	}
}

// commitWithRetry commits a single message offset with bounded retries.
func (c *Consumer) commitWithRetry(reader messageReader, km kafka.Message, max int) error {
	if max <= 0 {
		max = 1
	}
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = reader.CommitMessages(ctx, km)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("commit failed", applogger.Int("attempts", max), applogger.Int64("offset", km.Offset), applogger.Error(err))
	return err
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := min * time.Duration(1<<uint(attempt-1))
	if exp > max || exp <= 0 {
		exp = max
	}
	// jitter up to 50%
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int63n(half))
}

var (
	consumerQueueDepth    *prometheus.GaugeVec
	consumerQueueFullness *prometheus.GaugeVec
	consumerHandleLatency *prometheus.HistogramVec
	consumerMessagesTotal *prometheus.CounterVec
	consumerOnce          sync.Once
	consumerRegisterer    prometheus.Registerer
)

// SetConsumerMetricsRegisterer sets a custom Prometheus registerer for consumer metrics (useful for testing).
func SetConsumerMetricsRegisterer(reg prometheus.Registerer) { consumerRegisterer = reg }

func initConsumerMetrics() {
	consumerOnce.Do(func() {
		factory := promauto.With(prometheus.DefaultRegisterer)
		if consumerRegisterer != nil {
			factory = promauto.With(consumerRegisterer)
		}
		consumerQueueDepth = factory.NewGaugeVec(
			prometheus.GaugeOpts{Name: "tascan_kafka_consumer_queue_depth", Help: "Number of messages waiting in consumer queue"},
			[]string{"topic"},
		)
		consumerQueueFullness = factory.NewGaugeVec(
			prometheus.GaugeOpts{Name: "tascan_kafka_consumer_queue_fullness", Help: "Queue utilization ratio (len/cap)"},
			[]string{"topic"},
		)
		consumerHandleLatency = factory.NewHistogramVec(
			prometheus.HistogramOpts{Name: "tascan_kafka_consumer_handle_seconds", Help: "Handling time per message"},
			[]string{"topic"},
		)
		consumerMessagesTotal = factory.NewCounterVec(
			prometheus.CounterOpts{Name: "tascan_kafka_consumer_messages_total", Help: "Messages handled by outcome"},
			[]string{"topic", "result"},
		)
	})
}

func observeQueue(topic string, n, capacity int) {
	if consumerQueueDepth == nil || capacity == 0 {
		return
	}
	consumerQueueDepth.WithLabelValues(topic).Set(float64(n))
	consumerQueueFullness.WithLabelValues(topic).Set(float64(n) / float64(capacity))
}

func observeHandled(topic, result string, dur time.Duration) {
	if consumerHandleLatency == nil {
		return
	}
	consumerHandleLatency.WithLabelValues(topic).Observe(dur.Seconds())
	consumerMessagesTotal.WithLabelValues(topic, result).Inc()
}
