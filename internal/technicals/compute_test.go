package technicals

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TAScan/internal/domain/models"
)

var testSubject = models.Subject{Screener: "america", Exchange: "NASDAQ", Symbol: "AAPL", Interval: "1d"}

func snapshotOf(t *testing.T, vals map[string]float64) models.Snapshot {
	t.Helper()
	keys := Keys()
	row := make([]*float64, len(keys))
	for i, k := range keys {
		if v, ok := vals[k]; ok {
			row[i] = fp(v)
		}
	}
	s, err := Decode("NASDAQ:AAPL", row)
	require.NoError(t, err)
	return s
}

func fullRow() map[string]float64 {
	vals := map[string]float64{
		"Recommend.Other": -0.2, "Recommend.All": 0.05, "Recommend.MA": 0.6,
		"RSI": 25, "RSI[1]": 20,
		"Stoch.K": 15, "Stoch.D": 10, "Stoch.K[1]": 25, "Stoch.D[1]": 30,
		"CCI20": -150, "CCI20[1]": -200,
		"ADX": 25, "ADX+DI": 30, "ADX-DI": 20, "ADX+DI[1]": 18, "ADX-DI[1]": 22,
		"AO": -1, "AO[1]": 1, "AO[2]": 0,
		"Mom": 1, "Mom[1]": 2,
		"MACD.macd": 1, "MACD.signal": 1,
		"Rec.Stoch.RSI": 1, "Rec.WR": -1, "Rec.BBPower": 0, "Rec.UO": 1,
		"close": 100,
		"Rec.Ichimoku": 0, "Rec.VWMA": 1, "Rec.HullMA9": -1,
	}
	for _, name := range []string{"EMA10", "SMA10", "EMA20", "SMA20", "EMA30", "SMA30",
		"EMA50", "SMA50", "EMA100", "SMA100", "EMA200", "SMA200"} {
		vals[name] = 90
	}
	vals["SMA200"] = 110
	return vals
}

func names(g models.Group) []string {
	out := make([]string, 0, len(g.Computed))
	for _, v := range g.Computed {
		out = append(out, v.Name)
	}
	return out
}

func TestComputeEndToEnd(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })

	s := snapshotOf(t, map[string]float64{
		"Recommend.Other": 0.3, "Recommend.All": 0.3, "Recommend.MA": 0.3,
		"RSI": 25, "RSI[1]": 20,
		"Stoch.K": 15, "Stoch.D": 10, "Stoch.K[1]": 25, "Stoch.D[1]": 30,
		"close": 100, "EMA10": 95,
	})

	a, err := Compute(testSubject, s)
	require.NoError(t, err)

	assert.Equal(t, models.Tally{Buy: 2}, a.Oscillators.Tally)
	assert.Equal(t, models.Tally{Buy: 1}, a.MovingAverages.Tally)
	assert.Equal(t, models.Tally{Buy: 3}, a.Summary.Tally)
	assert.Equal(t, models.Buy, a.Summary.Recommendation)
	assert.Equal(t, models.Buy, a.Oscillators.Recommendation)
	assert.Equal(t, models.Buy, a.MovingAverages.Recommendation)
	assert.Equal(t, []string{FamilyRSI, FamilyStoch}, names(a.Oscillators))
	assert.Equal(t, []string{"EMA10"}, names(a.MovingAverages))

	assert.Equal(t, "AAPL", a.Symbol)
	assert.Equal(t, "NASDAQ", a.Exchange)
	assert.Equal(t, "america", a.Screener)
	assert.Equal(t, "1d", a.Interval)
	assert.Equal(t, fixed, a.Time)
	assert.Equal(t, SchemaVersion, a.SchemaVersion)
	assert.Equal(t, 100.0, *a.Indicators.Get("close"))
}

func TestComputeFullRow(t *testing.T) {
	a, err := Compute(testSubject, snapshotOf(t, fullRow()))
	require.NoError(t, err)

	assert.Equal(t, []string{FamilyRSI, FamilyStoch, FamilyCCI, FamilyADX, FamilyAO, FamilyMom, FamilyMACD,
		FamilyStochRSI, FamilyWR, FamilyBBP, FamilyUO}, names(a.Oscillators))
	assert.Equal(t, []string{"EMA10", "SMA10", "EMA20", "SMA20", "EMA30", "SMA30",
		"EMA50", "SMA50", "EMA100", "SMA100", "EMA200", "SMA200",
		FamilyIchimoku, FamilyVWMA, FamilyHullMA}, names(a.MovingAverages))

	// RSI, Stoch, CCI, ADX, Stoch.RSI, UO buy; AO, Mom, W%R sell; MACD, BBP neutral
	assert.Equal(t, models.Tally{Buy: 6, Sell: 3, Neutral: 2}, a.Oscillators.Tally)
	// eleven MAs below close, SMA200 above, HullMA sells, VWMA buys, Ichimoku neutral
	assert.Equal(t, models.Tally{Buy: 12, Sell: 2, Neutral: 1}, a.MovingAverages.Tally)

	// labels come from the composite scores, not the tallies
	assert.Equal(t, models.Neutral, a.Summary.Recommendation)
	assert.Equal(t, models.Sell, a.Oscillators.Recommendation)
	assert.Equal(t, models.StrongBuy, a.MovingAverages.Recommendation)

	ma, ok := a.MovingAverages.Lookup("SMA200")
	require.True(t, ok)
	assert.Equal(t, models.Sell, ma)
}

func TestComputeTallyInvariants(t *testing.T) {
	base := fullRow()
	for key := range base {
		if key == KeyRecommendAll || key == KeyRecommendMA {
			continue
		}
		t.Run("without "+key, func(t *testing.T) {
			vals := fullRow()
			delete(vals, key)
			a, err := Compute(testSubject, snapshotOf(t, vals))
			require.NoError(t, err)

			for _, g := range []models.Group{a.Oscillators, a.MovingAverages} {
				assert.Equal(t, len(g.Computed), g.Tally.Total())
			}
			assert.Equal(t, a.Oscillators.Tally.Plus(a.MovingAverages.Tally), a.Summary.Tally)
			assert.Empty(t, a.Summary.Computed)
		})
	}
}

func TestComputeCompleteness(t *testing.T) {
	tests := []struct {
		family string
		inputs []string
		ma     bool
	}{
		{FamilyRSI, []string{"RSI", "RSI[1]"}, false},
		{FamilyStoch, []string{"Stoch.K", "Stoch.D", "Stoch.K[1]", "Stoch.D[1]"}, false},
		{FamilyCCI, []string{"CCI20", "CCI20[1]"}, false},
		{FamilyADX, []string{"ADX", "ADX+DI", "ADX-DI", "ADX+DI[1]", "ADX-DI[1]"}, false},
		{FamilyAO, []string{"AO", "AO[1]", "AO[2]"}, false},
		{FamilyMom, []string{"Mom", "Mom[1]"}, false},
		{FamilyMACD, []string{"MACD.macd", "MACD.signal"}, false},
		{FamilyStochRSI, []string{"Rec.Stoch.RSI"}, false},
		{FamilyWR, []string{"Rec.WR"}, false},
		{FamilyBBP, []string{"Rec.BBPower"}, false},
		{FamilyUO, []string{"Rec.UO"}, false},
		{"EMA10", []string{"EMA10", "close"}, true},
		{"SMA200", []string{"SMA200", "close"}, true},
		{FamilyIchimoku, []string{"Rec.Ichimoku"}, true},
		{FamilyVWMA, []string{"Rec.VWMA"}, true},
		{FamilyHullMA, []string{"Rec.HullMA9"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			for _, input := range tt.inputs {
				vals := fullRow()
				delete(vals, input)
				a, err := Compute(testSubject, snapshotOf(t, vals))
				require.NoError(t, err)
				g := a.Oscillators
				if tt.ma {
					g = a.MovingAverages
				}
				_, ok := g.Lookup(tt.family)
				assert.False(t, ok, "%s computed without %s", tt.family, input)
			}

			a, err := Compute(testSubject, snapshotOf(t, fullRow()))
			require.NoError(t, err)
			g := a.Oscillators
			if tt.ma {
				g = a.MovingAverages
			}
			_, ok := g.Lookup(tt.family)
			assert.True(t, ok)
		})
	}
}

func TestComputeWithoutCloseKeepsTernaryMAs(t *testing.T) {
	vals := fullRow()
	delete(vals, "close")
	a, err := Compute(testSubject, snapshotOf(t, vals))
	require.NoError(t, err)
	assert.Equal(t, []string{FamilyIchimoku, FamilyVWMA, FamilyHullMA}, names(a.MovingAverages))
	assert.Equal(t, models.Tally{Buy: 1, Sell: 1, Neutral: 1}, a.MovingAverages.Tally)
}

func TestComputeInsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		drop    []string
		missing string
	}{
		{"no summary score", []string{KeyRecommendAll}, "Recommend.All"},
		{"no moving average score", []string{KeyRecommendMA}, "Recommend.MA"},
		{"neither", []string{KeyRecommendAll, KeyRecommendMA}, "Recommend.All, Recommend.MA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := fullRow()
			for _, k := range tt.drop {
				delete(vals, k)
			}
			a, err := Compute(testSubject, snapshotOf(t, vals))
			assert.Nil(t, a)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInsufficientData))
			assert.Contains(t, err.Error(), tt.missing)
			assert.Contains(t, err.Error(), "NASDAQ:AAPL")
		})
	}
}

func TestComputeMissingOscillatorScoreIsErrorLabel(t *testing.T) {
	vals := fullRow()
	delete(vals, KeyRecommendOther)
	a, err := Compute(testSubject, snapshotOf(t, vals))
	require.NoError(t, err)
	assert.Equal(t, models.Error, a.Oscillators.Recommendation)
	assert.NotEmpty(t, a.Oscillators.Computed)
}

func TestComputeAllNeutralIsNotEmpty(t *testing.T) {
	a, err := Compute(testSubject, snapshotOf(t, map[string]float64{
		"Recommend.Other": 0, "Recommend.All": 0, "Recommend.MA": 0,
	}))
	require.NoError(t, err)
	assert.Equal(t, models.Tally{}, a.Summary.Tally)
	assert.Equal(t, models.Neutral, a.Summary.Recommendation)
	assert.Empty(t, a.Oscillators.Computed)
	assert.Empty(t, a.MovingAverages.Computed)
}
