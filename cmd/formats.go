package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"recast/internal/convert"
	"recast/internal/tui"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported output formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([][]string, 0, len(convert.Formats))
		for _, f := range convert.Formats {
			rows = append(rows, []string{f.String(), "." + f.Ext(), yesNo(f.SupportsAlpha()), yesNo(f.UsesQuality())})
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderTable([]string{"Format", "Extension", "Alpha", "Quality"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
