package technicals

import (
	"fmt"
	"hash/fnv"

	"TAScan/internal/domain/models"
	domrepo "TAScan/internal/domain/repository"
)

// indicatorKeys is the positional contract with the scanner. Columns are requested
// in this order and rows come back aligned to it.
var indicatorKeys = [...]string{
	"Recommend.Other", "Recommend.All", "Recommend.MA",
	"RSI", "RSI[1]",
	"Stoch.K", "Stoch.D", "Stoch.K[1]", "Stoch.D[1]",
	"CCI20", "CCI20[1]",
	"ADX", "ADX+DI", "ADX-DI", "ADX+DI[1]", "ADX-DI[1]",
	"AO", "AO[1]",
	"Mom", "Mom[1]",
	"MACD.macd", "MACD.signal",
	"Rec.Stoch.RSI", "Stoch.RSI.K",
	"Rec.WR", "W.R",
	"Rec.BBPower", "BBPower",
	"Rec.UO", "UO",
	"close",
	"EMA5", "SMA5", "EMA10", "SMA10", "EMA20", "SMA20", "EMA30", "SMA30",
	"EMA50", "SMA50", "EMA100", "SMA100", "EMA200", "SMA200",
	"Rec.Ichimoku", "Ichimoku.BLine",
	"Rec.VWMA", "VWMA",
	"Rec.HullMA9", "HullMA9",
	"Pivot.M.Classic.S3", "Pivot.M.Classic.S2", "Pivot.M.Classic.S1", "Pivot.M.Classic.Middle",
	"Pivot.M.Classic.R1", "Pivot.M.Classic.R2", "Pivot.M.Classic.R3",
	"Pivot.M.Fibonacci.S3", "Pivot.M.Fibonacci.S2", "Pivot.M.Fibonacci.S1", "Pivot.M.Fibonacci.Middle",
	"Pivot.M.Fibonacci.R1", "Pivot.M.Fibonacci.R2", "Pivot.M.Fibonacci.R3",
	"Pivot.M.Camarilla.S3", "Pivot.M.Camarilla.S2", "Pivot.M.Camarilla.S1", "Pivot.M.Camarilla.Middle",
	"Pivot.M.Camarilla.R1", "Pivot.M.Camarilla.R2", "Pivot.M.Camarilla.R3",
	"Pivot.M.Woodie.S3", "Pivot.M.Woodie.S2", "Pivot.M.Woodie.S1", "Pivot.M.Woodie.Middle",
	"Pivot.M.Woodie.R1", "Pivot.M.Woodie.R2", "Pivot.M.Woodie.R3",
	"Pivot.M.Demark.S1", "Pivot.M.Demark.Middle", "Pivot.M.Demark.R1",
	"open", "P.SAR", "BB.lower", "BB.upper", "AO[2]", "volume", "change", "low", "high",
}

// Key names read by the aggregator.
const (
	KeyRecommendOther = "Recommend.Other"
	KeyRecommendAll   = "Recommend.All"
	KeyRecommendMA    = "Recommend.MA"
	KeyClose          = "close"
)

// MovingAveragePeriods are the EMA/SMA periods that vote.
var MovingAveragePeriods = [...]int{10, 20, 30, 50, 100, 200}

// SchemaVersion fingerprints the ordered key list.
var SchemaVersion = fingerprint(indicatorKeys[:])

func fingerprint(keys []string) string {
	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Keys returns a copy of the ordered indicator key list.
func Keys() []string {
	out := make([]string, len(indicatorKeys))
	copy(out, indicatorKeys[:])
	return out
}

// Columns returns the scanner column names for an interval: each key with the
// interval suffix appended.
func Columns(iv domrepo.Interval) []string {
	suffix := iv.Suffix()
	out := make([]string, len(indicatorKeys))
	for i, k := range indicatorKeys {
		out[i] = k + suffix
	}
	return out
}

// Decode maps a positional scanner row onto named fields. Rows longer than the key
// list are rejected; shorter rows leave the trailing keys null.
func Decode(symbol string, values []*float64) (models.Snapshot, error) {
	if len(values) > len(indicatorKeys) {
		return models.Snapshot{}, SchemaMismatchError(symbol,
			fmt.Sprintf("row has %d values, schema %s has %d keys", len(values), SchemaVersion, len(indicatorKeys)))
	}
	ind := models.NewIndicators(indicatorKeys[:], values)
	return FromIndicators(ind), nil
}

// FromIndicators builds the named view over an already keyed indicator set.
func FromIndicators(ind models.Indicators) models.Snapshot {
	g := ind.Get
	s := models.Snapshot{
		RecommendOther: g(KeyRecommendOther),
		RecommendAll:   g(KeyRecommendAll),
		RecommendMA:    g(KeyRecommendMA),

		RSI:     g("RSI"),
		RSIPrev: g("RSI[1]"),

		StochK:     g("Stoch.K"),
		StochD:     g("Stoch.D"),
		StochKPrev: g("Stoch.K[1]"),
		StochDPrev: g("Stoch.D[1]"),

		CCI20:     g("CCI20"),
		CCI20Prev: g("CCI20[1]"),

		ADX:            g("ADX"),
		ADXPlusDI:      g("ADX+DI"),
		ADXMinusDI:     g("ADX-DI"),
		ADXPlusDIPrev:  g("ADX+DI[1]"),
		ADXMinusDIPrev: g("ADX-DI[1]"),

		AO:      g("AO"),
		AOPrev:  g("AO[1]"),
		AOPrev2: g("AO[2]"),

		Mom:     g("Mom"),
		MomPrev: g("Mom[1]"),

		MACD:       g("MACD.macd"),
		MACDSignal: g("MACD.signal"),

		RecStochRSI: g("Rec.Stoch.RSI"),
		RecWR:       g("Rec.WR"),
		RecBBPower:  g("Rec.BBPower"),
		RecUO:       g("Rec.UO"),

		Close: g(KeyClose),
		Open:  g("open"),

		MovingAverages: make(map[string]*float64, 2*len(MovingAveragePeriods)),

		RecIchimoku: g("Rec.Ichimoku"),
		RecVWMA:     g("Rec.VWMA"),
		RecHullMA9:  g("Rec.HullMA9"),

		PSAR:    g("P.SAR"),
		BBLower: g("BB.lower"),
		BBUpper: g("BB.upper"),

		Raw: ind,
	}
	for _, p := range MovingAveragePeriods {
		for _, kind := range [...]string{"EMA", "SMA"} {
			name := fmt.Sprintf("%s%d", kind, p)
			s.MovingAverages[name] = g(name)
		}
	}
	return s
}
