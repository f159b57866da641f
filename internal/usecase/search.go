package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"TAScan/internal/domain/models"
	domrepo "TAScan/internal/domain/repository"
	icache "TAScan/internal/service/cache"
	svcmetrics "TAScan/internal/service/metrics"
	"TAScan/internal/technicals"
	xlogger "TAScan/pkg/logger"
)

// SymbolSearch resolves free text to symbols, caching upstream responses for ttl.
// Cache failures are logged and bypassed.
type SymbolSearch struct {
	searcher domrepo.SymbolSearcher
	cache    icache.BytesCache
	ttl      time.Duration
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
}

func NewSymbolSearch(searcher domrepo.SymbolSearcher, cache icache.BytesCache, ttl time.Duration, metrics domrepo.Metrics, logger *xlogger.Logger) *SymbolSearch {
	if cache == nil {
		cache = icache.Noop{}
	}
	return &SymbolSearch{searcher: searcher, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

func searchKey(text, assetType string) string {
	return "search:" + strings.ToLower(text) + "|" + assetType
}

func (s *SymbolSearch) Search(ctx context.Context, text, assetType string) ([]models.SymbolMatch, error) {
	start := time.Now()
	defer func() { s.metrics.RecordLatency("search", time.Since(start).Seconds()) }()

	text = strings.TrimSpace(text)
	if text == "" {
		err := technicals.ConfigurationError("text", "text is required")
		s.metrics.RecordError(technicals.KindOf(err))
		return nil, err
	}
	key := searchKey(text, assetType)

	if b, ok, err := s.cache.GetBytes(ctx, key); err != nil {
		s.logger.Warn("search cache get failed", xlogger.Error(err), xlogger.String("key", key))
	} else if ok {
		var cached []models.SymbolMatch
		if err := json.Unmarshal(b, &cached); err == nil {
			svcmetrics.SearchCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}
	svcmetrics.SearchCache.WithLabelValues("miss").Inc()

	matches, err := s.searcher.Search(ctx, text, assetType)
	if err != nil {
		terr := technicals.TransportError(err)
		s.metrics.RecordError(technicals.KindOf(terr))
		return nil, terr
	}

	if b, err := json.Marshal(matches); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
			s.logger.Warn("search cache set failed", xlogger.Error(err), xlogger.String("key", key))
		}
	}
	return matches, nil
}
