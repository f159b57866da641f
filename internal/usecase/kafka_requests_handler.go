package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"TAScan/internal/domain/models"
	domrepo "TAScan/internal/domain/repository"
	svcmetrics "TAScan/internal/service/metrics"
	"TAScan/internal/technicals"
	xhttp "TAScan/pkg/http"
	pkgkafka "TAScan/pkg/kafka"
	xlogger "TAScan/pkg/logger"
)

type batchAnalyzer interface {
	AnalyzeMultiple(ctx context.Context, p AnalyzeMultipleParams) (*models.BatchAnalysis, error)
}

// KafkaRequestsHandler consumes batch analysis requests and publishes one
// result event per requested symbol.
type KafkaRequestsHandler struct {
	topic     string
	analyzer  batchAnalyzer
	publisher domrepo.Publisher
	logger    *xlogger.Logger
}

func NewKafkaRequestsHandler(topic string, analyzer batchAnalyzer, publisher domrepo.Publisher, logger *xlogger.Logger) *KafkaRequestsHandler {
	return &KafkaRequestsHandler{topic: topic, analyzer: analyzer, publisher: publisher, logger: logger}
}

func (h *KafkaRequestsHandler) Topic() string { return h.topic }

// Handle returns nil once events are published. Malformed payloads and schema
// mismatches are permanent; transport failures are returned for retry.
func (h *KafkaRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var msg models.BatchAnalysisMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return pkgkafka.Permanent(fmt.Errorf("decode request: %w", err))
	}
	if msg.RequestID == "" {
		msg.RequestID = pkgkafka.TraceIDFromContext(ctx)
	}
	svcmetrics.BatchSymbols.WithLabelValues("kafka").Observe(float64(len(msg.Symbols)))

	if verr := xhttp.ApplyDefaultsAndValidate(ctx, &msg); verr != nil {
		return h.reject(ctx, &msg, technicals.ConfigurationError("request", describeValidation(verr)))
	}

	res, err := h.analyzer.AnalyzeMultiple(ctx, AnalyzeMultipleParams{
		Screener: msg.Screener,
		Interval: msg.Interval,
		Symbols:  msg.Symbols,
	})
	if err != nil {
		if errors.Is(err, technicals.ErrConfiguration) {
			return h.reject(ctx, &msg, err)
		}
		return err
	}

	now := time.Now().UTC()
	evs := make([]*models.AnalysisResultEvent, 0, len(res.Results))
	for _, key := range slices.Sorted(maps.Keys(res.Results)) {
		ev := &models.AnalysisResultEvent{
			RequestID: msg.RequestID,
			Key:       key,
			Screener:  res.Screener,
			Interval:  res.Interval,
			Time:      now,
		}
		switch an := res.Results[key]; {
		case an != nil:
			ev.Status = models.EventStatusOK
			ev.Analysis = models.NewAnalysisResponse(an)
		case res.Errors[key] == ErrNotFound:
			ev.Status = models.EventStatusMissing
			ev.Error = ErrNotFound
		default:
			ev.Status = models.EventStatusRejected
			ev.Error = res.Errors[key]
		}
		evs = append(evs, ev)
	}
	if err := h.publisher.PublishResults(ctx, evs); err != nil {
		return fmt.Errorf("publish results: %w", err)
	}
	h.logger.Debug("batch request handled",
		xlogger.String("request_id", msg.RequestID),
		xlogger.Int("symbols", len(evs)),
	)
	return nil
}

// reject publishes a rejected event for every requested symbol. With no symbols
// there is nothing to key an event by, so the message is dead-lettered.
func (h *KafkaRequestsHandler) reject(ctx context.Context, msg *models.BatchAnalysisMessage, cause error) error {
	keys := make([]string, 0, len(msg.Symbols))
	seen := make(map[string]struct{}, len(msg.Symbols))
	for _, s := range msg.Symbols {
		k := strings.ToUpper(strings.TrimSpace(s))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return pkgkafka.Permanent(cause)
	}

	h.logger.Warn("batch request rejected",
		xlogger.String("request_id", msg.RequestID),
		xlogger.Error(cause),
	)
	now := time.Now().UTC()
	evs := make([]*models.AnalysisResultEvent, 0, len(keys))
	for _, k := range keys {
		evs = append(evs, &models.AnalysisResultEvent{
			RequestID: msg.RequestID,
			Key:       k,
			Screener:  msg.Screener,
			Interval:  msg.Interval,
			Status:    models.EventStatusRejected,
			Error:     cause.Error(),
			Time:      now,
		})
	}
	if err := h.publisher.PublishResults(ctx, evs); err != nil {
		return fmt.Errorf("publish rejections: %w", err)
	}
	return nil
}

func describeValidation(v interface{}) string {
	errs, ok := v.([]xhttp.ValidationError)
	if !ok || len(errs) == 0 {
		return "invalid request"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var _ pkgkafka.MessageHandler = (*KafkaRequestsHandler)(nil)
