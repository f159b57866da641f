package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TAScan/internal/domain/models"
	"TAScan/internal/technicals"
	"TAScan/internal/usecase"
	xlogger "TAScan/pkg/logger"
)

type stubAnalyzer struct {
	single   *models.Analysis
	batch    *models.BatchAnalysis
	err      error
	gotOne   usecase.AnalyzeParams
	gotBatch usecase.AnalyzeMultipleParams
}

func (s *stubAnalyzer) Analyze(_ context.Context, p usecase.AnalyzeParams) (*models.Analysis, error) {
	s.gotOne = p
	return s.single, s.err
}

func (s *stubAnalyzer) AnalyzeMultiple(_ context.Context, p usecase.AnalyzeMultipleParams) (*models.BatchAnalysis, error) {
	s.gotBatch = p
	return s.batch, s.err
}

type stubSearch struct {
	matches []models.SymbolMatch
	err     error
}

func (s *stubSearch) Search(context.Context, string, string) ([]models.SymbolMatch, error) {
	return s.matches, s.err
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func serve(t *testing.T, h *AnalysisEchoHandler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func sampleAnalysis() *models.Analysis {
	return &models.Analysis{
		Symbol:   "AAPL",
		Exchange: "NASDAQ",
		Screener: "america",
		Interval: "1d",
		Summary:  models.Group{Recommendation: models.Buy, Tally: models.Tally{Buy: 10, Sell: 3, Neutral: 4}},
		Oscillators: models.Group{
			Recommendation: models.Neutral,
			Tally:          models.Tally{Neutral: 1},
			Computed:       []models.Vote{{Name: "RSI", Recommendation: models.Neutral}},
		},
		MovingAverages: models.Group{Recommendation: models.Buy},
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	an := &stubAnalyzer{single: sampleAnalysis()}
	h := NewAnalysisEchoHandler(xlogger.NewNop(), an, &stubSearch{})

	rec, env := serve(t, h, http.MethodPost, "/api/v1/tradingview/analysis",
		`{"symbol":"AAPL","screener":"america","exchange":"NASDAQ"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1d", an.gotOne.Interval)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.JSONEq(t, `{"RECOMMENDATION":"BUY","BUY":10,"SELL":3,"NEUTRAL":4}`, string(body["summary"]))
	assert.JSONEq(t, `{"RECOMMENDATION":"NEUTRAL","BUY":0,"SELL":0,"NEUTRAL":1,"COMPUTE":{"RSI":"NEUTRAL"}}`, string(body["oscillators"]))
}

func TestAnalysisEndpointValidation(t *testing.T) {
	cases := map[string]string{
		"missing symbol":   `{"screener":"america","exchange":"NASDAQ"}`,
		"unknown screener": `{"symbol":"AAPL","screener":"mars","exchange":"NASDAQ"}`,
		"unknown interval": `{"symbol":"AAPL","screener":"america","exchange":"NASDAQ","interval":"3h"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			an := &stubAnalyzer{}
			h := NewAnalysisEchoHandler(xlogger.NewNop(), an, &stubSearch{})
			rec, _ := serve(t, h, http.MethodPost, "/api/v1/tradingview/analysis", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, an.gotOne.Symbol)
		})
	}
}

func TestAnalysisEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{technicals.ConfigurationError("symbol", "bad"), http.StatusBadRequest, "ERR_CONFIGURATION"},
		{technicals.UpstreamEmptyError("NASDAQ:AAPL"), http.StatusNotFound, "ERR_UPSTREAM_EMPTY"},
		{technicals.InsufficientDataError("NASDAQ:AAPL", "Recommend.All"), http.StatusUnprocessableEntity, "ERR_INSUFFICIENT_DATA"},
		{technicals.TransportError(errors.New("dial")), http.StatusBadGateway, "ERR_UPSTREAM"},
		{technicals.SchemaMismatchError("NASDAQ:AAPL", "row too long"), http.StatusBadGateway, "ERR_SCHEMA_MISMATCH"},
		{errors.New("boom"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := NewAnalysisEchoHandler(xlogger.NewNop(), &stubAnalyzer{err: tc.err}, &stubSearch{})
			rec, env := serve(t, h, http.MethodPost, "/api/v1/tradingview/analysis",
				`{"symbol":"AAPL","screener":"america","exchange":"NASDAQ"}`)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status, env.Status)
			assert.Contains(t, string(env.Data), tc.code)
		})
	}
}

func TestMultipleAnalysisEndpointKeepsNullResults(t *testing.T) {
	an := &stubAnalyzer{batch: &models.BatchAnalysis{
		Screener: "america",
		Interval: "1h",
		Results:  map[string]*models.Analysis{"NASDAQ:AAPL": sampleAnalysis(), "NYSE:GONE": nil},
		Errors:   map[string]string{"NYSE:GONE": usecase.ErrNotFound},
	}}
	h := NewAnalysisEchoHandler(xlogger.NewNop(), an, &stubSearch{})

	rec, env := serve(t, h, http.MethodPost, "/api/v1/tradingview/analysis/multiple",
		`{"symbols":["NASDAQ:AAPL","NYSE:GONE"],"screener":"america","interval":"1h"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"NASDAQ:AAPL", "NYSE:GONE"}, an.gotBatch.Symbols)

	var body struct {
		Results map[string]json.RawMessage `json:"results"`
		Errors  map[string]string          `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Contains(t, body.Results, "NYSE:GONE")
	assert.Equal(t, "null", string(body.Results["NYSE:GONE"]))
	assert.Equal(t, "not found", body.Errors["NYSE:GONE"])
}

func TestMultipleAnalysisEndpointRejectsEmptyList(t *testing.T) {
	h := NewAnalysisEchoHandler(xlogger.NewNop(), &stubAnalyzer{}, &stubSearch{})
	rec, _ := serve(t, h, http.MethodPost, "/api/v1/tradingview/analysis/multiple", `{"symbols":[],"screener":"america"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	s := &stubSearch{matches: []models.SymbolMatch{{Symbol: "AAPL", Exchange: "NASDAQ", Type: "stock", Description: "Apple Inc."}}}
	h := NewAnalysisEchoHandler(xlogger.NewNop(), &stubAnalyzer{}, s)

	rec, env := serve(t, h, http.MethodPost, "/api/v1/tradingview/search", `{"text":"apple","type":"stock"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"symbol":"AAPL","exchange":"NASDAQ","type":"stock","description":"Apple Inc."}]`, string(env.Data))

	rec, _ = serve(t, h, http.MethodPost, "/api/v1/tradingview/search", `{"text":"apple","type":"bond"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := NewAnalysisEchoHandler(xlogger.NewNop(), &stubAnalyzer{}, &stubSearch{})
	rec, env := serve(t, h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), technicals.SchemaVersion)
}
