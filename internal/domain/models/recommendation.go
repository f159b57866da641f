package models

// Recommendation is the verdict produced by a rule or derived from a composite score.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Neutral    Recommendation = "NEUTRAL"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
	Error      Recommendation = "ERROR"
)

// Tally counts BUY/SELL/NEUTRAL votes over a computed indicator set.
type Tally struct {
	Buy     int
	Sell    int
	Neutral int
}

// Add casts one vote. Only BUY, SELL and NEUTRAL are countable; anything else is ignored
// and reported as false.
func (t *Tally) Add(r Recommendation) bool {
	switch r {
	case Buy:
		t.Buy++
	case Sell:
		t.Sell++
	case Neutral:
		t.Neutral++
	default:
		return false
	}
	return true
}

// Plus returns the elementwise sum of two tallies.
func (t Tally) Plus(o Tally) Tally {
	return Tally{
		Buy:     t.Buy + o.Buy,
		Sell:    t.Sell + o.Sell,
		Neutral: t.Neutral + o.Neutral,
	}
}

// Total is the number of votes cast.
func (t Tally) Total() int { return t.Buy + t.Sell + t.Neutral }

// Vote is one entry of a computed indicator set.
type Vote struct {
	Name           string
	Recommendation Recommendation
}

// Group is one view of an analysis: a label from the composite score plus the votes
// of the families that could be computed.
type Group struct {
	Recommendation Recommendation
	Tally          Tally
	Computed       []Vote
}

// Lookup returns the recommendation a family produced, if it was computed.
func (g Group) Lookup(name string) (Recommendation, bool) {
	for _, v := range g.Computed {
		if v.Name == name {
			return v.Recommendation, true
		}
	}
	return "", false
}
