package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Requests and responses for the analysis HTTP endpoints. Defined in domain for reuse
// by the HTTP handlers, the Kafka request handler and the CLI.

const (
	screenerOneOf   = "america indonesia india uk brazil vietnam rsa ksa australia russia thailand philippines taiwan turkey france germany italy spain portugal poland netherlands belgium switzerland sweden norway denmark finland greece israel uae qatar bahrain oman kuwait egypt crypto forex cfd"
	intervalOneOf   = "1m 5m 15m 30m 1h 2h 4h 1d 1W 1M"
	searchTypeOneOf = "stock crypto futures index forex cfd fund"
)

type AnalysisRequest struct {
	Symbol   string `json:"symbol" validate:"required"`
	Screener string `json:"screener" validate:"required,oneof=america indonesia india uk brazil vietnam rsa ksa australia russia thailand philippines taiwan turkey france germany italy spain portugal poland netherlands belgium switzerland sweden norway denmark finland greece israel uae qatar bahrain oman kuwait egypt crypto forex cfd"`
	Exchange string `json:"exchange" validate:"required"`
	Interval string `json:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 1h 2h 4h 1d 1W 1M"`
}

type MultipleAnalysisRequest struct {
	Symbols  []string `json:"symbols" validate:"required,min=1,dive,required"`
	Screener string   `json:"screener" validate:"required,oneof=america indonesia india uk brazil vietnam rsa ksa australia russia thailand philippines taiwan turkey france germany italy spain portugal poland netherlands belgium switzerland sweden norway denmark finland greece israel uae qatar bahrain oman kuwait egypt crypto forex cfd"`
	Interval string   `json:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 1h 2h 4h 1d 1W 1M"`
}

type SearchRequest struct {
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"omitempty,oneof=stock crypto futures index forex cfd fund"`
}

// Screeners lists the markets accepted by the analysis requests.
func Screeners() []string { return splitOneOf(screenerOneOf) }

// Intervals lists the supported candle intervals.
func Intervals() []string { return splitOneOf(intervalOneOf) }

// SearchTypes lists the asset types accepted by symbol search.
func SearchTypes() []string { return splitOneOf(searchTypeOneOf) }

func splitOneOf(s string) []string { return strings.Fields(s) }

// GroupResponse renders a Group in the legacy wire shape:
// upper-case keys with the computed votes under COMPUTE.
type GroupResponse struct {
	Recommendation Recommendation            `json:"RECOMMENDATION"`
	Buy            int                       `json:"BUY"`
	Sell           int                       `json:"SELL"`
	Neutral        int                       `json:"NEUTRAL"`
	Compute        map[string]Recommendation `json:"COMPUTE,omitempty"`
}

// IndicatorsResponse serializes Indicators as a JSON object in upstream key order.
type IndicatorsResponse struct {
	ind Indicators
}

func (r IndicatorsResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	r.ind.Each(func(key string, value *float64) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var k, v []byte
		if k, err = json.Marshal(key); err != nil {
			return
		}
		if v, err = json.Marshal(value); err != nil {
			return
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type AnalysisResponse struct {
	Symbol         string             `json:"symbol,omitempty"`
	Exchange       string             `json:"exchange,omitempty"`
	Screener       string             `json:"screener,omitempty"`
	Interval       string             `json:"interval,omitempty"`
	Time           time.Time          `json:"time"`
	SchemaVersion  string             `json:"schema_version"`
	Summary        GroupResponse      `json:"summary"`
	Oscillators    GroupResponse      `json:"oscillators"`
	MovingAverages GroupResponse      `json:"moving_averages"`
	Indicators     IndicatorsResponse `json:"indicators"`
}

// NewGroupResponse converts a Group. Summary groups are rendered without COMPUTE.
func NewGroupResponse(g Group, withCompute bool) GroupResponse {
	out := GroupResponse{
		Recommendation: g.Recommendation,
		Buy:            g.Tally.Buy,
		Sell:           g.Tally.Sell,
		Neutral:        g.Tally.Neutral,
	}
	if withCompute {
		out.Compute = make(map[string]Recommendation, len(g.Computed))
		for _, v := range g.Computed {
			out.Compute[v.Name] = v.Recommendation
		}
	}
	return out
}

// NewAnalysisResponse converts an Analysis into its wire form.
func NewAnalysisResponse(a *Analysis) *AnalysisResponse {
	if a == nil {
		return nil
	}
	return &AnalysisResponse{
		Symbol:         a.Symbol,
		Exchange:       a.Exchange,
		Screener:       a.Screener,
		Interval:       a.Interval,
		Time:           a.Time,
		SchemaVersion:  a.SchemaVersion,
		Summary:        NewGroupResponse(a.Summary, false),
		Oscillators:    NewGroupResponse(a.Oscillators, true),
		MovingAverages: NewGroupResponse(a.MovingAverages, true),
		Indicators:     IndicatorsResponse{ind: a.Indicators},
	}
}

type MultipleAnalysisResponse struct {
	Screener string                       `json:"screener"`
	Interval string                       `json:"interval"`
	Results  map[string]*AnalysisResponse `json:"results"`
	Errors   map[string]string            `json:"errors,omitempty"`
}

// NewMultipleAnalysisResponse converts a BatchAnalysis. Keys with no analysis stay
// present with a null value.
func NewMultipleAnalysisResponse(b *BatchAnalysis) *MultipleAnalysisResponse {
	out := &MultipleAnalysisResponse{
		Screener: b.Screener,
		Interval: b.Interval,
		Results:  make(map[string]*AnalysisResponse, len(b.Results)),
		Errors:   b.Errors,
	}
	for k, a := range b.Results {
		out.Results[k] = NewAnalysisResponse(a)
	}
	return out
}

type SymbolMatchResponse struct {
	Symbol      string `json:"symbol"`
	Exchange    string `json:"exchange"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
}

func NewSearchResponse(matches []SymbolMatch) []SymbolMatchResponse {
	out := make([]SymbolMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, SymbolMatchResponse(m))
	}
	return out
}

// AnalysisResultEvent is published once per requested symbol of a batch request
// consumed from Kafka.
type AnalysisResultEvent struct {
	RequestID string            `json:"request_id,omitempty"`
	Key       string            `json:"key"`
	Screener  string            `json:"screener"`
	Interval  string            `json:"interval"`
	Status    string            `json:"status"`
	Analysis  *AnalysisResponse `json:"analysis"`
	Error     string            `json:"error,omitempty"`
	Time      time.Time         `json:"time"`
}

const (
	EventStatusOK       = "ok"
	EventStatusMissing  = "missing"
	EventStatusRejected = "rejected"
)

// BatchAnalysisMessage is the Kafka request payload for a batch analysis.
type BatchAnalysisMessage struct {
	RequestID string   `json:"request_id"`
	Screener  string   `json:"screener" validate:"required"`
	Interval  string   `json:"interval" default:"1d"`
	Symbols   []string `json:"symbols" validate:"required,min=1"`
}
