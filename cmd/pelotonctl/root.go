package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arvarik/peloton-go/internal/config"
	"github.com/arvarik/peloton-go/peloton"
)

// app carries the state shared by every command once the root pre-run has finished.
type app struct {
	cfgFile  string
	output   string
	logLevel string

	cfg    *config.Config
	logger zerolog.Logger
	client *peloton.Client
	out    io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pelotonctl",
		Short: "Query workouts, rides and instructors from the Peloton API",
		Long: `pelotonctl logs in to the Peloton API with the configured credentials and
prints profiles, workouts, rides and instructors as a table, JSON or YAML.

Credentials are read from ./config.yaml, ~/.pelotonctl/config.yaml or the
PELOTON_USERNAME and PELOTON_PASSWORD environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newWhoamiCmd(a),
		newInstructorsCmd(a),
		newWorkoutsCmd(a),
		newWorkoutCmd(a),
		newExportCmd(a),
	)

	return rootCmd
}

// initialize loads the configuration and builds the logger and the API client.
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	switch a.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.logger = setupLogger(cmd.ErrOrStderr(), cfg.Logging)

	// One persistent client keeps the connection pool across the calls of a command.
	httpClient := &http.Client{Timeout: cfg.Timeout}

	a.client = peloton.NewClient(cfg.Username, cfg.Password,
		peloton.WithHTTPClient(httpClient),
		peloton.WithBaseURL(cfg.BaseURL),
		peloton.WithPageLimit(cfg.PageLimit),
		peloton.WithUserAgent("pelotonctl/"+peloton.Version),
		peloton.WithLogger(a.logger),
		peloton.WithLogLevel(a.logger.GetLevel()),
	)

	a.logger.Debug().Str("client", a.client.String()).Msg("Client configured")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(w io.Writer, cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.WarnLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
