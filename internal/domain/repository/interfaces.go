package repository

import (
	"context"

	"TAScan/internal/domain/models"
)

// Scanner fetches indicator rows from the upstream scanner. Columns are sent
// verbatim; rows come back aligned to them.
type Scanner interface {
	Scan(ctx context.Context, screener string, tickers, columns []string) ([]models.ScanRow, error)
}

// SymbolSearcher resolves free text to tradable symbols.
type SymbolSearcher interface {
	Search(ctx context.Context, text, assetType string) ([]models.SymbolMatch, error)
}

// Publisher ships per-symbol analysis result events.
type Publisher interface {
	PublishResult(ctx context.Context, ev *models.AnalysisResultEvent) error
	PublishResults(ctx context.Context, evs []*models.AnalysisResultEvent) error
	Close() error
}

type Metrics interface {
	RecordRecommendation(group string, label models.Recommendation)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
