package models

// Indicators is the raw, ordered indicator row of one symbol and interval.
// A nil value means the upstream had no data for that key.
type Indicators struct {
	keys   []string
	values []*float64
	index  map[string]int
}

// NewIndicators pairs keys with values. Values missing at the tail are null.
func NewIndicators(keys []string, values []*float64) Indicators {
	ind := Indicators{
		keys:   make([]string, len(keys)),
		values: make([]*float64, len(keys)),
		index:  make(map[string]int, len(keys)),
	}
	copy(ind.keys, keys)
	for i, k := range keys {
		ind.index[k] = i
		if i < len(values) && values[i] != nil {
			v := *values[i]
			ind.values[i] = &v
		}
	}
	return ind
}

// Get returns the value for key, or nil when the key is unknown or null.
func (ind Indicators) Get(key string) *float64 {
	i, ok := ind.index[key]
	if !ok || ind.values[i] == nil {
		return nil
	}
	v := *ind.values[i]
	return &v
}

// Keys returns the keys in upstream order.
func (ind Indicators) Keys() []string {
	out := make([]string, len(ind.keys))
	copy(out, ind.keys)
	return out
}

// Len is the number of keys.
func (ind Indicators) Len() int { return len(ind.keys) }

// Each visits every key in order.
func (ind Indicators) Each(fn func(key string, value *float64)) {
	for i, k := range ind.keys {
		fn(k, ind.values[i])
	}
}

// Snapshot is the named view of one indicator row. Fields are nil when the
// upstream value was null.
type Snapshot struct {
	RecommendOther *float64
	RecommendAll   *float64
	RecommendMA    *float64

	RSI     *float64
	RSIPrev *float64

	StochK     *float64
	StochD     *float64
	StochKPrev *float64
	StochDPrev *float64

	CCI20     *float64
	CCI20Prev *float64

	ADX            *float64
	ADXPlusDI      *float64
	ADXMinusDI     *float64
	ADXPlusDIPrev  *float64
	ADXMinusDIPrev *float64

	AO      *float64
	AOPrev  *float64
	AOPrev2 *float64

	Mom     *float64
	MomPrev *float64

	MACD       *float64
	MACDSignal *float64

	RecStochRSI *float64
	RecWR       *float64
	RecBBPower  *float64
	RecUO       *float64

	Close *float64
	Open  *float64

	// MovingAverages holds EMA/SMA values keyed by family name, e.g. "EMA10".
	MovingAverages map[string]*float64

	RecIchimoku *float64
	RecVWMA     *float64
	RecHullMA9  *float64

	PSAR    *float64
	BBLower *float64
	BBUpper *float64

	Raw Indicators
}

// Subject identifies what a snapshot was taken for.
type Subject struct {
	Screener string
	Exchange string
	Symbol   string
	Interval string
}

// ScanRow is one row returned by the upstream scanner.
type ScanRow struct {
	Symbol string // EXCHANGE:SYMBOL
	Values []*float64
}
