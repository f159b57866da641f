package scanner

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"TAScan/internal/domain/models"
	drepo "TAScan/internal/domain/repository"
	xhttp "TAScan/pkg/http"
)

const (
	DefaultBaseURL   = "https://scanner.tradingview.com"
	DefaultSearchURL = "https://symbol-search.tradingview.com/symbol_search"
	DefaultLogoURL   = "https://s3-symbol-logo.tradingview.com"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// browserHeaders keep the upstream WAF from rejecting server-side calls.
func browserHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":         userAgent,
		"Accept":             "*/*",
		"Accept-Language":    "en-US,en;q=0.9",
		"Origin":             "https://www.tradingview.com",
		"Referer":            "https://www.tradingview.com/",
		"Sec-Ch-Ua":          `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		"Sec-Ch-Ua-Mobile":   "?0",
		"Sec-Ch-Ua-Platform": `"macOS"`,
		"Sec-Fetch-Dest":     "empty",
		"Sec-Fetch-Mode":     "cors",
		"Sec-Fetch-Site":     "same-site",
	}
}

type Config struct {
	BaseURL   string
	SearchURL string
	LogoURL   string
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string
}

// Client talks to the scanner and symbol search endpoints. It implements
// repository.Scanner and repository.SymbolSearcher.
type Client struct {
	http      *xhttp.Client
	baseURL   string
	searchURL string
	logoURL   string
}

var (
	_ drepo.Scanner        = (*Client)(nil)
	_ drepo.SymbolSearcher = (*Client)(nil)
)

func New(cfg Config, opts ...xhttp.ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.LogoURL == "" {
		cfg.LogoURL = DefaultLogoURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	base := []xhttp.ClientOption{
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithProxy(cfg.ProxyURL),
		xhttp.WithHeaders(browserHeaders(cfg.UserAgent)),
	}
	return &Client{
		http:      xhttp.NewClient(append(base, opts...)...),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		searchURL: cfg.SearchURL,
		logoURL:   strings.TrimRight(cfg.LogoURL, "/"),
	}
}

type scanQuery struct {
	Types []string `json:"types"`
}

type scanSymbols struct {
	Tickers []string  `json:"tickers"`
	Query   scanQuery `json:"query"`
}

type scanRequest struct {
	Symbols scanSymbols `json:"symbols"`
	Columns []string    `json:"columns"`
}

type scanRow struct {
	S string     `json:"s"`
	D []*float64 `json:"d"`
}

type scanResponse struct {
	Data       []scanRow `json:"data"`
	TotalCount int       `json:"totalCount"`
}

// Scan posts one scanner query for all tickers. Tickers are sent upper-cased.
func (c *Client) Scan(ctx context.Context, screener string, tickers, columns []string) ([]models.ScanRow, error) {
	up := make([]string, len(tickers))
	for i, t := range tickers {
		up[i] = strings.ToUpper(t)
	}
	body := scanRequest{
		Symbols: scanSymbols{Tickers: up, Query: scanQuery{Types: []string{}}},
		Columns: columns,
	}

	var resp scanResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/%s/scan", c.baseURL, url.PathEscape(strings.ToLower(screener))),
		Body:   body,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", screener, err)
	}

	rows := make([]models.ScanRow, 0, len(resp.Data))
	for _, r := range resp.Data {
		rows = append(rows, models.ScanRow{Symbol: r.S, Values: r.D})
	}
	return rows, nil
}

type searchHit struct {
	Symbol             string `json:"symbol"`
	Exchange           string `json:"exchange"`
	Type               string `json:"type"`
	Description        string `json:"description"`
	LogoID             string `json:"logoid"`
	BaseCurrencyLogoID string `json:"base-currency-logoid"`
	Country            string `json:"country"`
}

// Search queries symbol search. An empty assetType searches every type.
func (c *Client) Search(ctx context.Context, text, assetType string) ([]models.SymbolMatch, error) {
	params := map[string][]string{"text": {text}}
	if assetType != "" {
		params["type"] = []string{assetType}
	}

	var hits []searchHit
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.searchURL,
		QueryParams: params,
	}, &hits)
	if err != nil {
		return nil, fmt.Errorf("symbol search: %w", err)
	}

	out := make([]models.SymbolMatch, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.SymbolMatch{
			Symbol:      stripHighlight(h.Symbol),
			Exchange:    h.Exchange,
			Type:        h.Type,
			Description: stripHighlight(h.Description),
			Logo:        c.logo(h),
		})
	}
	return out, nil
}

func (c *Client) logo(h searchHit) string {
	switch {
	case h.LogoID != "":
		return fmt.Sprintf("%s/%s.svg", c.logoURL, h.LogoID)
	case h.BaseCurrencyLogoID != "":
		return fmt.Sprintf("%s/%s.svg", c.logoURL, h.BaseCurrencyLogoID)
	case h.Country != "":
		return fmt.Sprintf("%s/country/%s.svg", c.logoURL, h.Country)
	default:
		return ""
	}
}

var highlight = strings.NewReplacer("<em>", "", "</em>", "")

// search wraps matched text in <em> tags
func stripHighlight(s string) string { return highlight.Replace(s) }
