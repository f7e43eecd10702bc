package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"recast/internal/collect"
	"recast/internal/inspect"
	"recast/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>...",
	Short: "Report format, dimensions and metadata of images without modifying them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		collected, err := collect.Collect(ctx, args, collect.Options{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not collect input files: %w", err)
		}
		if len(collected.Files) == 0 {
			return fmt.Errorf("no images found")
		}

		inspector, err := inspect.NewInspector(inspect.Config{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create inspector: %w", err)
		}

		for i, file := range collected.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			printReport(out, inspector.Inspect(ctx, file))
		}
		return nil
	},
}

func printReport(w io.Writer, rep inspect.Report) {
	fmt.Fprintln(w, tui.FileStyle.Render(rep.Path))

	bullet := tui.DimStyle.Render("-")
	line := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", tui.CategoryStyle.Render(label+":"), tui.ValueStyle.Render(value))
	}

	line("Kind", rep.Kind.String())
	line("Size", humanize.IBytes(uint64(max(rep.Size, 0))))
	if rep.Decoder != "" {
		line("Dimensions", fmt.Sprintf("%dx%d", rep.Width, rep.Height))
		line("Color model", rep.ColorModel)
		line("Alpha", yesNo(rep.Alpha))
	}
	if rep.Err != nil {
		fmt.Fprintf(w, "  %s %s\n", tui.ErrorStyle.Render("Error:"), tui.ErrorStyle.Render(rep.Err.Error()))
	}

	if len(rep.Details) == 0 {
		fmt.Fprintf(w, "  %s %s\n", tui.CategoryStyle.Render("Metadata:"), tui.DimStyle.Render("none"))
		return
	}
	for _, detail := range rep.Details {
		if len(detail.Values) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s\n", tui.CategoryStyle.Render(detail.Category+":"))
		for _, value := range detail.Values {
			fmt.Fprintf(w, "    %s %s\n", bullet, tui.ValueStyle.Render(value))
		}
	}
	for _, insight := range rep.Insights {
		fmt.Fprintf(w, "  %s %s\n", tui.DimStyle.Render(insight.Kind+":"), tui.ValueStyle.Render(insight.Message))
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
