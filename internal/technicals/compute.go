package technicals

import (
	"fmt"
	"strings"
	"time"

	"TAScan/internal/domain/models"
)

// Family names as they appear in the computed sets.
const (
	FamilyRSI      = "RSI"
	FamilyStoch    = "STOCH.K"
	FamilyCCI      = "CCI"
	FamilyADX      = "ADX"
	FamilyAO       = "AO"
	FamilyMom      = "Mom"
	FamilyMACD     = "MACD"
	FamilyStochRSI = "Stoch.RSI"
	FamilyWR       = "W%R"
	FamilyBBP      = "BBP"
	FamilyUO       = "UO"
	FamilyIchimoku = "Ichimoku"
	FamilyVWMA     = "VWMA"
	FamilyHullMA   = "HullMA"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Compute turns one snapshot into an Analysis. It fails only when the composite
// scores needed for the summary and moving-average labels are null.
func Compute(subject models.Subject, s models.Snapshot) (*models.Analysis, error) {
	var missing []string
	if s.RecommendAll == nil {
		missing = append(missing, KeyRecommendAll)
	}
	if s.RecommendMA == nil {
		missing = append(missing, KeyRecommendMA)
	}
	if len(missing) > 0 {
		return nil, InsufficientDataError(compositeKey(subject), missing...)
	}

	osc := oscillators(s)
	ma := movingAverages(s)

	osc.Recommendation = Recommend(s.RecommendOther)
	ma.Recommendation = Recommend(s.RecommendMA)
	summary := models.Group{
		Recommendation: Recommend(s.RecommendAll),
		Tally:          osc.Tally.Plus(ma.Tally),
	}

	return &models.Analysis{
		Symbol:         subject.Symbol,
		Exchange:       subject.Exchange,
		Screener:       subject.Screener,
		Interval:       subject.Interval,
		Time:           now(),
		SchemaVersion:  SchemaVersion,
		Summary:        summary,
		Oscillators:    osc,
		MovingAverages: ma,
		Indicators:     s.Raw,
	}, nil
}

// group accumulates votes in insertion order.
type group struct {
	models.Group
}

func (g *group) vote(name string, r models.Recommendation) {
	if g.Tally.Add(r) {
		g.Computed = append(g.Computed, models.Vote{Name: name, Recommendation: r})
	}
}

func oscillators(s models.Snapshot) models.Group {
	var g group
	if present(s.RSI, s.RSIPrev) {
		g.vote(FamilyRSI, RSI(*s.RSI, *s.RSIPrev))
	}
	if present(s.StochK, s.StochD, s.StochKPrev, s.StochDPrev) {
		g.vote(FamilyStoch, Stoch(*s.StochK, *s.StochD, *s.StochKPrev, *s.StochDPrev))
	}
	if present(s.CCI20, s.CCI20Prev) {
		g.vote(FamilyCCI, CCI20(*s.CCI20, *s.CCI20Prev))
	}
	if present(s.ADX, s.ADXPlusDI, s.ADXMinusDI, s.ADXPlusDIPrev, s.ADXMinusDIPrev) {
		g.vote(FamilyADX, ADX(*s.ADX, *s.ADXPlusDI, *s.ADXMinusDI, *s.ADXPlusDIPrev, *s.ADXMinusDIPrev))
	}
	if present(s.AO, s.AOPrev, s.AOPrev2) {
		g.vote(FamilyAO, AO(*s.AO, *s.AOPrev, *s.AOPrev2))
	}
	if present(s.Mom, s.MomPrev) {
		g.vote(FamilyMom, Mom(*s.Mom, *s.MomPrev))
	}
	if present(s.MACD, s.MACDSignal) {
		g.vote(FamilyMACD, MACD(*s.MACD, *s.MACDSignal))
	}
	simple(&g, FamilyStochRSI, s.RecStochRSI)
	simple(&g, FamilyWR, s.RecWR)
	simple(&g, FamilyBBP, s.RecBBPower)
	simple(&g, FamilyUO, s.RecUO)
	return g.Group
}

func movingAverages(s models.Snapshot) models.Group {
	var g group
	if s.Close != nil {
		for _, p := range MovingAveragePeriods {
			for _, kind := range [...]string{"EMA", "SMA"} {
				name := fmt.Sprintf("%s%d", kind, p)
				if v := s.MovingAverages[name]; v != nil {
					g.vote(name, MA(*v, *s.Close))
				}
			}
		}
	}
	simple(&g, FamilyIchimoku, s.RecIchimoku)
	simple(&g, FamilyVWMA, s.RecVWMA)
	simple(&g, FamilyHullMA, s.RecHullMA9)
	return g.Group
}

func simple(g *group, name string, score *float64) {
	if score != nil {
		g.vote(name, Simple(*score))
	}
}

func present(vals ...*float64) bool {
	for _, v := range vals {
		if v == nil {
			return false
		}
	}
	return true
}

func compositeKey(s models.Subject) string {
	if s.Exchange == "" {
		return strings.ToUpper(s.Symbol)
	}
	return strings.ToUpper(s.Exchange + ":" + s.Symbol)
}
