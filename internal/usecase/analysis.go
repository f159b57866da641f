package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TAScan/internal/domain/models"
	domrepo "TAScan/internal/domain/repository"
	"TAScan/internal/technicals"
	xlogger "TAScan/pkg/logger"
	"TAScan/pkg/util"
)

// Metric group names.
const (
	GroupSummary        = "summary"
	GroupOscillators    = "oscillators"
	GroupMovingAverages = "moving_averages"
)

// ErrNotFound is the per-symbol message for requested keys missing from a scan.
const ErrNotFound = "not found"

type AnalyzeParams struct {
	Screener string
	Exchange string
	Symbol   string
	Interval string
}

type AnalyzeMultipleParams struct {
	Screener string
	Interval string
	Symbols  []string
}

// Analyzer fetches indicator rows from the scanner and turns them into analyses.
// It issues exactly one scan per call and never retries.
type Analyzer struct {
	scanner domrepo.Scanner
	metrics domrepo.Metrics
	logger  *xlogger.Logger
}

func NewAnalyzer(scanner domrepo.Scanner, metrics domrepo.Metrics, logger *xlogger.Logger) *Analyzer {
	return &Analyzer{scanner: scanner, metrics: metrics, logger: logger}
}

// Analyze computes one symbol.
func (a *Analyzer) Analyze(ctx context.Context, p AnalyzeParams) (*models.Analysis, error) {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("analyze", time.Since(start).Seconds()) }()

	screener := strings.TrimSpace(p.Screener)
	exchange := strings.TrimSpace(p.Exchange)
	symbol := strings.TrimSpace(p.Symbol)
	switch {
	case screener == "":
		return nil, a.fail(technicals.ConfigurationError("screener", "screener is required"))
	case exchange == "":
		return nil, a.fail(technicals.ConfigurationError("exchange", "exchange is required"))
	case symbol == "":
		return nil, a.fail(technicals.ConfigurationError("symbol", "symbol is required"))
	}
	iv, err := a.interval(p.Interval)
	if err != nil {
		return nil, a.fail(err)
	}

	key := util.JoinComposite(exchange, symbol)
	rows, err := a.scan(ctx, screener, []string{key}, iv)
	if err != nil {
		return nil, a.fail(err)
	}

	var row *models.ScanRow
	for i := range rows {
		if strings.EqualFold(rows[i].Symbol, key) {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		return nil, a.fail(technicals.UpstreamEmptyError(key))
	}

	snap, err := technicals.Decode(key, row.Values)
	if err != nil {
		return nil, a.fail(err)
	}
	analysis, err := technicals.Compute(models.Subject{
		Screener: screener,
		Exchange: exchange,
		Symbol:   symbol,
		Interval: iv.String(),
	}, snap)
	if err != nil {
		return nil, a.fail(err)
	}
	a.record(analysis)
	return analysis, nil
}

// AnalyzeMultiple computes many EXCHANGE:SYMBOL keys with a single scan. Every
// requested key appears in the result; a nil analysis carries its reason in Errors.
func (a *Analyzer) AnalyzeMultiple(ctx context.Context, p AnalyzeMultipleParams) (*models.BatchAnalysis, error) {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("analyze_multiple", time.Since(start).Seconds()) }()

	screener := strings.TrimSpace(p.Screener)
	if screener == "" {
		return nil, a.fail(technicals.ConfigurationError("screener", "screener is required"))
	}
	if len(p.Symbols) == 0 {
		return nil, a.fail(technicals.ConfigurationError("symbols", "at least one symbol is required"))
	}
	var invalid []string
	for _, s := range p.Symbols {
		if !util.IsComposite(strings.TrimSpace(s)) {
			invalid = append(invalid, fmt.Sprintf("%q", s))
		}
	}
	if len(invalid) > 0 {
		return nil, a.fail(technicals.ConfigurationError("symbols",
			"invalid symbol format "+strings.Join(invalid, ", ")+", expected EXCHANGE:SYMBOL"))
	}
	iv, err := a.interval(p.Interval)
	if err != nil {
		return nil, a.fail(err)
	}

	keys := util.UniqueUpper(p.Symbols)
	rows, err := a.scan(ctx, screener, keys, iv)
	if err != nil {
		return nil, a.fail(err)
	}

	out := &models.BatchAnalysis{
		Screener: screener,
		Interval: iv.String(),
		Results:  make(map[string]*models.Analysis, len(keys)),
		Errors:   make(map[string]string),
	}
	requested := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		requested[k] = struct{}{}
	}

	for _, row := range rows {
		key := strings.ToUpper(row.Symbol)
		if _, ok := requested[key]; !ok {
			a.logger.Debug("scanner returned unrequested symbol", xlogger.String("symbol", row.Symbol))
			continue
		}
		if _, seen := out.Results[key]; seen {
			a.logger.Warn("scanner returned duplicate symbol", xlogger.String("symbol", row.Symbol))
			continue
		}
		exchange, symbol, _ := util.SplitComposite(key)

		snap, err := technicals.Decode(key, row.Values)
		if err != nil {
			a.metrics.RecordError(technicals.KindOf(err))
			a.logger.Warn("scanner row does not fit indicator keys",
				xlogger.String("symbol", key), xlogger.Int("values", len(row.Values)))
			out.Results[key] = nil
			out.Errors[key] = err.Error()
			continue
		}
		analysis, err := technicals.Compute(models.Subject{
			Screener: screener,
			Exchange: exchange,
			Symbol:   symbol,
			Interval: iv.String(),
		}, snap)
		if err != nil {
			a.metrics.RecordError(technicals.KindOf(err))
			out.Results[key] = nil
			out.Errors[key] = err.Error()
			continue
		}
		a.record(analysis)
		out.Results[key] = analysis
	}

	for _, k := range keys {
		if _, ok := out.Results[k]; !ok {
			out.Results[k] = nil
			out.Errors[k] = ErrNotFound
		}
	}
	return out, nil
}

func (a *Analyzer) interval(raw string) (domrepo.Interval, error) {
	iv, ok := domrepo.NormalizeInterval(strings.TrimSpace(raw))
	if !ok {
		return "", technicals.ConfigurationError("interval", fmt.Sprintf("unsupported interval %q", raw))
	}
	return iv, nil
}

func (a *Analyzer) scan(ctx context.Context, screener string, keys []string, iv domrepo.Interval) ([]models.ScanRow, error) {
	rows, err := a.scanner.Scan(ctx, screener, keys, technicals.Columns(iv))
	if err != nil {
		var terr *technicals.Error
		if errors.As(err, &terr) {
			return nil, err
		}
		return nil, technicals.TransportError(err)
	}
	return rows, nil
}

func (a *Analyzer) fail(err error) error {
	a.metrics.RecordError(technicals.KindOf(err))
	return err
}

func (a *Analyzer) record(an *models.Analysis) {
	a.metrics.RecordRecommendation(GroupSummary, an.Summary.Recommendation)
	a.metrics.RecordRecommendation(GroupOscillators, an.Oscillators.Recommendation)
	a.metrics.RecordRecommendation(GroupMovingAverages, an.MovingAverages.Recommendation)
}
