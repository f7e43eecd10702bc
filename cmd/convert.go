package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"recast/internal/collect"
	"recast/internal/config"
	"recast/internal/convert"
	"recast/internal/job"
	"recast/internal/tui"
)

var (
	convertFormat   string
	convertOutput   string
	convertQuality  int
	convertPlain    bool
	convertNoPacing bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <path>...",
	Short: "Convert images and folders of images to another format",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		cfg, err = applyConvertFlags(cmd, cfg)
		if err != nil {
			return err
		}

		collected, err := collect.Collect(ctx, args, collect.Options{
			Exclude: cfg.Destination,
			Verify:  true,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("could not collect input files: %w", err)
		}
		if n := len(collected.Skipped); n > 0 {
			fmt.Fprintf(out, "Skipped %d unreadable file(s).\n", n)
		}
		if len(collected.Files) == 0 {
			return fmt.Errorf("no convertible images found")
		}

		if cfg.Destination != "" {
			if err := os.MkdirAll(cfg.Destination, 0o755); err != nil {
				return fmt.Errorf("could not create output folder: %w", err)
			}
		}

		engine, err := convert.NewEngine(convert.EngineConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create conversion engine: %w", err)
		}
		controller, err := job.NewController(job.ControllerConfig{
			Converter: engine,
			Pacing:    cfg.Pacing,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("could not create job controller: %w", err)
		}

		h, err := controller.Start(ctx, job.Job{
			Files:       collected.Files,
			Format:      cfg.Format,
			Destination: cfg.Destination,
			Quality:     cfg.Quality,
		})
		if err != nil {
			return fmt.Errorf("could not start job: %w", err)
		}

		if convertPlain || !isTerminal(out) {
			printEvents(out, h.Events())
		} else {
			program := tea.NewProgram(tui.NewModel(h.Events(), h.Cancel), tea.WithOutput(out))
			if _, err := program.Run(); err != nil {
				logger.Warningf("interactive view stopped: %v", err)
			}
			// The view can exit before the stream closes; the rest is printed as lines.
			printEvents(out, h.Events())
		}

		res := h.Wait()
		fmt.Fprintln(out, tui.RenderSummary(tui.ResultRows(res)))
		fmt.Fprintln(out, tui.RenderMessage(res.Success, res.Message))
		if outcomes := tui.RenderOutcomes(res.Summary.Outcomes); outcomes != "" {
			fmt.Fprintln(out, outcomes)
		}
		if res.Summary.Succeeded > 0 && cfg.Destination != "" {
			outPath := cfg.Destination
			if abs, absErr := filepath.Abs(cfg.Destination); absErr == nil {
				outPath = abs
			}
			fmt.Fprintf(out, "Converted files written to: %s\n", outPath)
		}

		if !res.Success {
			return errReported
		}
		return nil
	},
}

// applyConvertFlags overrides the loaded configuration with the flags the user set.
func applyConvertFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()

	if flags.Changed("format") {
		format, err := convert.ParseFormat(convertFormat)
		if err != nil {
			return cfg, err
		}
		cfg.Format = format
	}
	if flags.Changed("output") {
		cfg.Destination = convertOutput
	}
	if flags.Changed("quality") {
		if convertQuality < job.MinQuality || convertQuality > job.MaxQuality {
			return cfg, fmt.Errorf("%w: got %d", job.ErrInvalidQuality, convertQuality)
		}
		cfg.Quality = convertQuality
	}
	if convertNoPacing {
		cfg.Pacing = job.NoPacing
	}
	return cfg, nil
}

// printEvents writes the event stream as lines until it closes.
func printEvents(w io.Writer, events <-chan job.Event) {
	percent := -1
	for ev := range events {
		switch ev.Kind {
		case job.EventProgress:
			if ev.Percent == percent {
				continue
			}
			percent = ev.Percent
			fmt.Fprintf(w, "[%3d%%]\n", percent)
		case job.EventStatus, job.EventCancelRejected:
			fmt.Fprintf(w, "[%3d%%] %s\n", max(percent, 0), ev.Status)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func init() {
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "output format (png, jpg, webp, bmp, tiff, gif, ico, pdf)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "destination folder, defaults to next to each source")
	convertCmd.Flags().IntVarP(&convertQuality, "quality", "q", job.DefaultQuality, "encoder quality for jpg and webp (1-100)")
	convertCmd.Flags().BoolVar(&convertPlain, "plain", false, "print progress lines instead of the interactive view")
	convertCmd.Flags().BoolVar(&convertNoPacing, "no-pacing", false, "convert without warm-up, delays or padding")

	rootCmd.AddCommand(convertCmd)
}
