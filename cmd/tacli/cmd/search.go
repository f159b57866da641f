package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"TAScan/internal/domain/models"
)

var searchReq models.SearchRequest

var searchCmd = &cobra.Command{
	Use:   "search TEXT",
	Short: "Find symbols by name or ticker",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchReq.Text = strings.Join(args, " ")
		if err := validate(cmd, &searchReq); err != nil {
			return err
		}
		e, err := newEnv()
		if err != nil {
			return err
		}
		matches, err := e.search.Search(cmd.Context(), searchReq.Text, searchReq.Type)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), models.NewSearchResponse(matches))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchReq.Type, "type", "t", "", "asset type (stock crypto futures index forex cfd fund)")
}
