package cmd

import (
	"github.com/spf13/cobra"

	"TAScan/internal/domain/models"
	"TAScan/internal/usecase"
)

var multipleReq models.MultipleAnalysisRequest

var multipleCmd = &cobra.Command{
	Use:   "multiple EXCHANGE:SYMBOL...",
	Short: "Analyze many symbols with a single scan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		multipleReq.Symbols = args
		if err := validate(cmd, &multipleReq); err != nil {
			return err
		}
		e, err := newEnv()
		if err != nil {
			return err
		}
		res, err := e.analyzer.AnalyzeMultiple(cmd.Context(), usecase.AnalyzeMultipleParams{
			Screener: multipleReq.Screener,
			Interval: multipleReq.Interval,
			Symbols:  multipleReq.Symbols,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), models.NewMultipleAnalysisResponse(res))
	},
}

func init() {
	rootCmd.AddCommand(multipleCmd)

	multipleCmd.Flags().StringVarP(&multipleReq.Screener, "screener", "s", "", "market screener (required)")
	multipleCmd.Flags().StringVarP(&multipleReq.Interval, "interval", "i", "1d", "candle interval")

	_ = multipleCmd.MarkFlagRequired("screener")
}
