package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TAScan/internal/domain/models"
	"TAScan/internal/technicals"
	pkgkafka "TAScan/pkg/kafka"
	xlogger "TAScan/pkg/logger"
)

type recordingPublisher struct {
	events []*models.AnalysisResultEvent
	err    error
}

func (p *recordingPublisher) PublishResult(ctx context.Context, ev *models.AnalysisResultEvent) error {
	return p.PublishResults(ctx, []*models.AnalysisResultEvent{ev})
}

func (p *recordingPublisher) PublishResults(_ context.Context, evs []*models.AnalysisResultEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evs...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newTestRequestsHandler(sc *stubScanner) (*KafkaRequestsHandler, *recordingPublisher) {
	a, _ := newTestAnalyzer(sc)
	pub := &recordingPublisher{}
	return NewKafkaRequestsHandler("tascan.analysis.requests", a, pub, xlogger.NewNop()), pub
}

func TestRequestsHandlerPublishesOneEventPerSymbol(t *testing.T) {
	thin := bullish()
	delete(thin, technicals.KeyRecommendAll)
	sc := &stubScanner{rows: []models.ScanRow{
		row("NASDAQ:AAPL", bullish()),
		row("NASDAQ:MSFT", thin),
	}}
	h, pub := newTestRequestsHandler(sc)

	err := h.Handle(context.Background(), []byte(`{
		"request_id": "req-1",
		"screener": "america",
		"symbols": ["NASDAQ:MSFT", "NASDAQ:AAPL", "NYSE:GONE"]
	}`))
	require.NoError(t, err)

	require.Len(t, pub.events, 3)
	byKey := map[string]*models.AnalysisResultEvent{}
	for _, ev := range pub.events {
		assert.Equal(t, "req-1", ev.RequestID)
		assert.Equal(t, "1d", ev.Interval)
		byKey[ev.Key] = ev
	}
	assert.Equal(t, "NASDAQ:AAPL", pub.events[0].Key)
	assert.Equal(t, models.EventStatusOK, byKey["NASDAQ:AAPL"].Status)
	require.NotNil(t, byKey["NASDAQ:AAPL"].Analysis)
	assert.Equal(t, models.EventStatusRejected, byKey["NASDAQ:MSFT"].Status)
	assert.Nil(t, byKey["NASDAQ:MSFT"].Analysis)
	assert.Equal(t, models.EventStatusMissing, byKey["NYSE:GONE"].Status)
	assert.Equal(t, ErrNotFound, byKey["NYSE:GONE"].Error)
}

func TestRequestsHandlerMisalignedRowRejectsOnlyThatSymbol(t *testing.T) {
	long := row("NASDAQ:MSFT", bullish())
	long.Values = append(long.Values, nil)
	h, pub := newTestRequestsHandler(&stubScanner{rows: []models.ScanRow{row("NASDAQ:AAPL", bullish()), long}})

	err := h.Handle(context.Background(), []byte(`{"screener": "america", "symbols": ["NASDAQ:AAPL", "NASDAQ:MSFT"]}`))
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, models.EventStatusOK, pub.events[0].Status)
	assert.Equal(t, "NASDAQ:MSFT", pub.events[1].Key)
	assert.Equal(t, models.EventStatusRejected, pub.events[1].Status)
	assert.Contains(t, pub.events[1].Error, "schema mismatch")
}

func TestRequestsHandlerRejectsConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"missing screener": `{"symbols": ["NASDAQ:AAPL"]}`,
		"bad symbol":       `{"screener": "america", "symbols": ["AAPL", "aapl"]}`,
		"bad interval":     `{"screener": "america", "interval": "3h", "symbols": ["NASDAQ:AAPL"]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			sc := &stubScanner{}
			h, pub := newTestRequestsHandler(sc)

			require.NoError(t, h.Handle(context.Background(), []byte(payload)))
			assert.Zero(t, sc.calls)
			require.Len(t, pub.events, 1)
			assert.Equal(t, models.EventStatusRejected, pub.events[0].Status)
			assert.NotEmpty(t, pub.events[0].Error)
		})
	}
}

func TestRequestsHandlerPermanentFailures(t *testing.T) {
	h, pub := newTestRequestsHandler(&stubScanner{})

	err := h.Handle(context.Background(), []byte(`not json`))
	assert.True(t, pkgkafka.IsPermanent(err))

	err = h.Handle(context.Background(), []byte(`{"screener": "america", "symbols": []}`))
	assert.True(t, pkgkafka.IsPermanent(err))
	assert.Empty(t, pub.events)
}

func TestRequestsHandlerReturnsTransportErrorsForRetry(t *testing.T) {
	h, pub := newTestRequestsHandler(&stubScanner{err: errors.New("503")})

	err := h.Handle(context.Background(), []byte(`{"screener": "america", "symbols": ["NASDAQ:AAPL"]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, technicals.ErrTransport)
	assert.False(t, pkgkafka.IsPermanent(err))
	assert.Empty(t, pub.events)
}

func TestRequestsHandlerTraceIDFallback(t *testing.T) {
	sc := &stubScanner{rows: []models.ScanRow{row("NASDAQ:AAPL", bullish())}}
	h, pub := newTestRequestsHandler(sc)
	ctx := pkgkafka.WithTraceID(context.Background(), "trace-9")

	require.NoError(t, h.Handle(ctx, []byte(`{"screener": "america", "symbols": ["NASDAQ:AAPL"]}`)))
	require.Len(t, pub.events, 1)
	assert.Equal(t, "trace-9", pub.events[0].RequestID)
}

func TestRequestsHandlerPublishFailureIsRetryable(t *testing.T) {
	sc := &stubScanner{rows: []models.ScanRow{row("NASDAQ:AAPL", bullish())}}
	h, pub := newTestRequestsHandler(sc)
	pub.err = errors.New("broker down")

	err := h.Handle(context.Background(), []byte(`{"screener": "america", "symbols": ["NASDAQ:AAPL"]}`))
	require.Error(t, err)
	assert.False(t, pkgkafka.IsPermanent(err))
}
