package cmd

import (
	"github.com/spf13/cobra"

	"TAScan/internal/domain/models"
	"TAScan/internal/usecase"
)

var analyzeReq models.AnalysisRequest

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, &analyzeReq); err != nil {
			return err
		}
		e, err := newEnv()
		if err != nil {
			return err
		}
		res, err := e.analyzer.Analyze(cmd.Context(), usecase.AnalyzeParams{
			Screener: analyzeReq.Screener,
			Exchange: analyzeReq.Exchange,
			Symbol:   analyzeReq.Symbol,
			Interval: analyzeReq.Interval,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), models.NewAnalysisResponse(res))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeReq.Screener, "screener", "s", "", "market screener, e.g. america, crypto (required)")
	analyzeCmd.Flags().StringVarP(&analyzeReq.Exchange, "exchange", "e", "", "exchange, e.g. NASDAQ (required)")
	analyzeCmd.Flags().StringVarP(&analyzeReq.Symbol, "symbol", "y", "", "ticker, e.g. AAPL (required)")
	analyzeCmd.Flags().StringVarP(&analyzeReq.Interval, "interval", "i", "1d", "candle interval (1m 5m 15m 30m 1h 2h 4h 1d 1W 1M)")

	_ = analyzeCmd.MarkFlagRequired("screener")
	_ = analyzeCmd.MarkFlagRequired("exchange")
	_ = analyzeCmd.MarkFlagRequired("symbol")
}
