package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/oklog/run"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"recast/internal/config"
	"recast/internal/log"
	loglogrus "recast/internal/log/logrus"
	"recast/internal/tui"
)

const (
	loggerTypeDefault = "default"
	loggerTypeJSON    = "json"
)

// Version is the application version (set via ldflags).
var Version = "dev"

// errReported is returned when the failure was already shown to the user.
var errReported = errors.New("failure already reported")

type rootOptions struct {
	configFile string
	debug      bool
	noLog      bool
	noColor    bool
	loggerType string
}

var (
	rootOpts rootOptions
	logger   log.Logger = log.Noop
)

var rootCmd = &cobra.Command{
	Use:           "recast",
	Short:         "recast - batch convert images between formats",
	Long:          "recast converts batches of local images to PNG, JPEG, WEBP, BMP, TIFF, GIF, ICO or PDF.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootOpts.loggerType != loggerTypeDefault && rootOpts.loggerType != loggerTypeJSON {
			return fmt.Errorf("invalid --logger %q: must be %q or %q", rootOpts.loggerType, loggerTypeDefault, loggerTypeJSON)
		}
		if rootOpts.noColor {
			tui.DisableColor()
		}
		logger = getLogger(cmd.ErrOrStderr())
		return nil
	},
}

// Execute runs the command line with the process arguments and exits on failure.
func Execute() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				logger.Debugf("termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Subcommands keep the context of a previous execution unless it is replaced.
		for _, c := range rootCmd.Commands() {
			c.SetContext(ctx)
		}

		g.Add(
			func() error {
				return rootCmd.ExecuteContext(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(w io.Writer) log.Logger {
	if rootOpts.noLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = w
	logrusLogEntry := logrus.NewEntry(logrusLog)

	// Warnings for skipped files are on by default, conversion details need --debug.
	logrusLogEntry.Logger.SetLevel(logrus.WarnLevel)
	if rootOpts.debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch rootOpts.loggerType {
	case loggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: rootOpts.noColor,
		})
	}

	l := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})
	l.Debugf("debug level is enabled")

	return l
}

// loadConfig reads --config, or returns the defaults when it is not set.
func loadConfig(ctx context.Context) (config.Config, error) {
	if rootOpts.configFile == "" {
		return config.Default(), nil
	}

	path, err := filepath.Abs(rootOpts.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("could not resolve config path: %w", err)
	}

	repo := config.NewYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetConfig(ctx, path[1:])
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOpts.configFile, "config", "", "path to a YAML config file")
	flags.BoolVar(&rootOpts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&rootOpts.noLog, "no-log", false, "disable logging")
	flags.BoolVar(&rootOpts.noColor, "no-color", false, "disable colors")
	flags.StringVar(&rootOpts.loggerType, "logger", loggerTypeDefault, "logger type (default or json)")
}
