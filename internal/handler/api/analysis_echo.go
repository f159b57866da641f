package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"TAScan/internal/domain/models"
	svcmetrics "TAScan/internal/service/metrics"
	"TAScan/internal/technicals"
	"TAScan/internal/usecase"
	xhttp "TAScan/pkg/http"
	xlogger "TAScan/pkg/logger"
)

type analyzer interface {
	Analyze(ctx context.Context, p usecase.AnalyzeParams) (*models.Analysis, error)
	AnalyzeMultiple(ctx context.Context, p usecase.AnalyzeMultipleParams) (*models.BatchAnalysis, error)
}

type symbolSearcher interface {
	Search(ctx context.Context, text, assetType string) ([]models.SymbolMatch, error)
}

// AnalysisEchoHandler serves the analysis and search endpoints.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analyzer analyzer
	search   symbolSearcher
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analyzer analyzer, search symbolSearcher) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, analyzer: analyzer, search: search}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/health", h.Health)

	tv := g.Group("/tradingview")
	tv.POST("/analysis", h.Analysis)
	tv.POST("/analysis/multiple", h.MultipleAnalysis)
	tv.POST("/search", h.Search)
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status":         "ok",
		"schema_version": technicals.SchemaVersion,
	})
}

func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	start := time.Now()
	defer observe("analysis", start)

	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		countError("analysis", "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		Screener: req.Screener,
		Exchange: req.Exchange,
		Symbol:   req.Symbol,
		Interval: req.Interval,
	})
	if err != nil {
		return h.fail(c, "analysis", err)
	}
	return xhttp.SuccessResponse(c, models.NewAnalysisResponse(res))
}

func (h *AnalysisEchoHandler) MultipleAnalysis(c echo.Context) error {
	start := time.Now()
	defer observe("analysis_multiple", start)

	req := &models.MultipleAnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		countError("analysis_multiple", "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}
	svcmetrics.BatchSymbols.WithLabelValues("http").Observe(float64(len(req.Symbols)))

	res, err := h.analyzer.AnalyzeMultiple(c.Request().Context(), usecase.AnalyzeMultipleParams{
		Screener: req.Screener,
		Interval: req.Interval,
		Symbols:  req.Symbols,
	})
	if err != nil {
		return h.fail(c, "analysis_multiple", err)
	}
	return xhttp.SuccessResponse(c, models.NewMultipleAnalysisResponse(res))
}

func (h *AnalysisEchoHandler) Search(c echo.Context) error {
	start := time.Now()
	defer observe("search", start)

	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		countError("search", "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	matches, err := h.search.Search(c.Request().Context(), req.Text, req.Type)
	if err != nil {
		return h.fail(c, "search", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, models.NewSearchResponse(matches))
}

func (h *AnalysisEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	countError(endpoint, appErr.Code)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" failed", xlogger.Error(err), xlogger.String("code", appErr.Code))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err), xlogger.String("code", appErr.Code))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps engine error kinds onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var terr *technicals.Error
	field := ""
	msg := err.Error()
	if errors.As(err, &terr) {
		field = terr.Key
	}
	switch {
	case errors.Is(err, technicals.ErrConfiguration):
		return xhttp.NewAppError("ERR_CONFIGURATION", field, msg, http.StatusBadRequest).WithError(err)
	case errors.Is(err, technicals.ErrUpstreamEmpty):
		return xhttp.NewAppError("ERR_UPSTREAM_EMPTY", field, msg, http.StatusNotFound).WithError(err)
	case errors.Is(err, technicals.ErrInsufficientData):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", field, msg, http.StatusUnprocessableEntity).WithError(err)
	case errors.Is(err, technicals.ErrTransport):
		return xhttp.NewAppError("ERR_UPSTREAM", "", "upstream scanner unavailable", http.StatusBadGateway).WithError(err)
	case errors.Is(err, technicals.ErrSchemaMismatch):
		return xhttp.NewAppError("ERR_SCHEMA_MISMATCH", field, msg, http.StatusBadGateway).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	svcmetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func countError(endpoint, code string) {
	svcmetrics.APIErrors.WithLabelValues(endpoint, code).Inc()
}

var _ xhttp.Handler = (*AnalysisEchoHandler)(nil)
