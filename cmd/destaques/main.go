package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rfdestaques/internal/config"
	"rfdestaques/internal/infrastructure"
)

// cli holds the state shared by every subcommand
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "destaques",
		Short: "Daily fixed-income highlights from the offers workbook",
		Long: `destaques reads the daily offers workbook (bank credit and public bonds),
selects the best offers per indexer and horizon, and renders the
messages sent to the client groups.

Configuration comes from config.yaml, .env and DESTAQUES_* variables.`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	root.AddCommand(
		newProcessCmd(c),
		newSendCmd(c),
		newServeCmd(c),
	)
	return root
}

// init loads configuration and builds a logger writing to stderr, so the
// messages on stdout can be piped
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	c.cfg = cfg
	c.logger = infrastructure.WithComponent(logger, "cli")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
