package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TAScan/internal/technicals"
)

func scannerStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/america/scan", r.URL.Path)
		keys := technicals.Keys()
		d := make([]interface{}, len(keys))
		for i, k := range keys {
			switch k {
			case technicals.KeyRecommendAll:
				d[i] = 0.7
			case technicals.KeyRecommendMA:
				d[i] = -0.3
			case technicals.KeyRecommendOther:
				d[i] = 0.0
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"totalCount": 1,
			"data":       []map[string]interface{}{{"s": "NASDAQ:AAPL", "d": d}},
		})
	}))
}

func TestAnalyzeCommandPrintsJSON(t *testing.T) {
	srv := scannerStub(t)
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"analyze", "--base-url", srv.URL, "-s", "america", "-e", "NASDAQ", "-y", "AAPL"})
	require.NoError(t, rootCmd.Execute())

	var got struct {
		Symbol  string `json:"symbol"`
		Summary struct {
			Recommendation string `json:"RECOMMENDATION"`
		} `json:"summary"`
		MovingAverages struct {
			Recommendation string `json:"RECOMMENDATION"`
		} `json:"moving_averages"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "STRONG_BUY", got.Summary.Recommendation)
	assert.Equal(t, "SELL", got.MovingAverages.Recommendation)
}

func TestMultipleCommandValidatesScreener(t *testing.T) {
	rootCmd.SetArgs([]string{"multiple", "-s", "mars", "NASDAQ:AAPL"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screener")
}
