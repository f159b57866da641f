package usecase

import (
	"context"
	"sync"

	"TAScan/internal/domain/models"
	"TAScan/internal/technicals"
)

type stubScanner struct {
	mu      sync.Mutex
	rows    []models.ScanRow
	err     error
	calls   int
	tickers []string
	columns []string
}

func (s *stubScanner) Scan(_ context.Context, _ string, tickers, columns []string) ([]models.ScanRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.tickers = tickers
	s.columns = columns
	return s.rows, s.err
}

type stubMetrics struct {
	mu     sync.Mutex
	labels map[string]models.Recommendation
	errors []string
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{labels: map[string]models.Recommendation{}}
}

func (m *stubMetrics) RecordRecommendation(group string, label models.Recommendation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[group] = label
}

func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *stubMetrics) RecordLatency(string, float64) {}

// row builds a scanner row with the named values set and everything else null.
func row(symbol string, named map[string]float64) models.ScanRow {
	keys := technicals.Keys()
	vals := make([]*float64, len(keys))
	for i, k := range keys {
		if v, ok := named[k]; ok {
			v := v
			vals[i] = &v
		}
	}
	return models.ScanRow{Symbol: symbol, Values: vals}
}

func bullish() map[string]float64 {
	return map[string]float64{
		technicals.KeyRecommendAll:   0.6,
		technicals.KeyRecommendMA:    0.2,
		technicals.KeyRecommendOther: 0.05,
		technicals.KeyClose:          100,
	}
}
