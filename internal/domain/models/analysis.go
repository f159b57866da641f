package models

import "time"

// Analysis is the result of computing one snapshot. It is built once and never mutated.
type Analysis struct {
	Symbol        string
	Exchange      string
	Screener      string
	Interval      string
	Time          time.Time
	SchemaVersion string

	Summary        Group
	Oscillators    Group
	MovingAverages Group

	Indicators Indicators
}

// BatchAnalysis holds the per-symbol outcome of a multi-symbol request.
// Every requested key is present in Results; a nil value means no analysis
// could be produced and Errors says why.
type BatchAnalysis struct {
	Screener string
	Interval string
	Results  map[string]*Analysis
	Errors   map[string]string
}

// SymbolMatch is one hit from the upstream symbol search.
type SymbolMatch struct {
	Symbol      string
	Exchange    string
	Type        string
	Description string
	Logo        string
}
