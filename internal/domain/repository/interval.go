package repository

// Interval represents a candle resolution understood by the scanner.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1W  Interval = "1W"
	Interval1M  Interval = "1M"
)

// column suffix appended to every indicator key for an interval; daily has none
var intervalSuffix = map[Interval]string{
	Interval1m:  "|1",
	Interval5m:  "|5",
	Interval15m: "|15",
	Interval30m: "|30",
	Interval1h:  "|60",
	Interval2h:  "|120",
	Interval4h:  "|240",
	Interval1d:  "",
	Interval1W:  "|1W",
	Interval1M:  "|1M",
}

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	_, ok := intervalSuffix[iv]
	return ok
}

// DefaultInterval returns the default interval.
func DefaultInterval() Interval { return Interval1d }

// NormalizeInterval maps an empty string to the default interval and reports
// whether the result is supported. Unknown intervals are returned as-is with ok=false.
func NormalizeInterval(s string) (Interval, bool) {
	if s == "" {
		return DefaultInterval(), true
	}
	iv := Interval(s)
	return iv, IsValidInterval(iv)
}

// Suffix returns the column suffix for the interval.
func (iv Interval) Suffix() string { return intervalSuffix[iv] }

func (iv Interval) String() string { return string(iv) }
