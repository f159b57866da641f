package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"TAScan/internal/service/scanner"
	"TAScan/internal/usecase"
	"TAScan/pkg/config"
	xhttp "TAScan/pkg/http"
	applogger "TAScan/pkg/logger"
	"TAScan/pkg/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "tacli",
	Short: "Technical analysis recommendations from the command line",
	Long: `tacli queries the market scanner and prints BUY/SELL/NEUTRAL
recommendations as JSON.

Example:
  tacli analyze --screener america --exchange NASDAQ --symbol AAPL --interval 1h
  tacli multiple --screener crypto BINANCE:BTCUSDT BINANCE:ETHUSDT
  tacli search apple --type stock`,
	SilenceUsage: true,
}

var (
	cfgPath  string
	baseURL  string
	proxyURL string
	timeout  time.Duration
	verbose  bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "optional YAML config (scanner section is used)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "scanner base URL override")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy", "", "HTTP proxy for upstream calls")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "upstream request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

// env bundles what each subcommand needs.
type env struct {
	analyzer *usecase.Analyzer
	search   *usecase.SymbolSearch
}

func newEnv() (*env, error) {
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		if cfg, err = config.Load(cfgPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if baseURL != "" {
		cfg.Scanner.BaseURL = baseURL
	}
	if proxyURL != "" {
		cfg.Scanner.ProxyURL = proxyURL
	}
	if timeout > 0 {
		cfg.Scanner.Timeout = timeout
	}

	l := applogger.NewNop()
	if verbose {
		l = applogger.NewWriter(os.Stderr)
	}
	client := scanner.New(scanner.Config{
		BaseURL:   cfg.Scanner.BaseURL,
		SearchURL: cfg.Scanner.SearchURL,
		LogoURL:   cfg.Scanner.LogoURL,
		Timeout:   cfg.Scanner.Timeout,
		ProxyURL:  cfg.Scanner.ProxyURL,
		UserAgent: cfg.Scanner.UserAgent,
	})
	// metrics go to a private registry; the CLI exposes no scrape endpoint
	rec := metrics.NewWithRegisterer(prometheus.NewRegistry())
	return &env{
		analyzer: usecase.NewAnalyzer(client, rec, l),
		search:   usecase.NewSymbolSearch(client, nil, 0, rec, l),
	}, nil
}

// validate applies request defaults and the HTTP API's validation rules.
func validate(cmd *cobra.Command, req interface{}) error {
	if verr := xhttp.ApplyDefaultsAndValidate(cmd.Context(), req); verr != nil {
		if errs, ok := verr.([]xhttp.ValidationError); ok && len(errs) > 0 {
			return fmt.Errorf("invalid arguments: %s", errs[0].Message)
		}
		return fmt.Errorf("invalid arguments")
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
