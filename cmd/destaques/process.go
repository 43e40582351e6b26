package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rfdestaques/internal/config"
	"rfdestaques/internal/files"
	"rfdestaques/internal/infrastructure"
	"rfdestaques/internal/services"
	"rfdestaques/internal/validation"
)

// processFlags are shared by process and send
type processFlags struct {
	top              int
	messageTop       int
	showEmpty        bool
	ratingFloor      string
	maxMinInvestment float64
	today            string
}

func (f *processFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.top, "top", 0, "offers kept per indexer and horizon (1-20)")
	cmd.Flags().IntVar(&f.messageTop, "message-top", 0, "offers listed per horizon in messages (1-20)")
	cmd.Flags().BoolVar(&f.showEmpty, "show-empty", false, "keep horizons with no offers in the messages")
	cmd.Flags().StringVar(&f.ratingFloor, "rating-floor", "", "minimum rating, e.g. A or AA-")
	cmd.Flags().Float64Var(&f.maxMinInvestment, "max-min-investment", 0, "drop offers whose minimum investment exceeds this amount")
	cmd.Flags().StringVar(&f.today, "today", "", "reference date YYYY-MM-DD (default: today)")
}

// options overlays the flags the user set on the configured defaults
func (f *processFlags) options(cmd *cobra.Command, opts services.ProcessOptions) (services.ProcessOptions, error) {
	flags := cmd.Flags()
	if flags.Changed("top") {
		opts.TopN = f.top
	}
	if flags.Changed("message-top") {
		opts.MessageTopN = f.messageTop
	}
	if flags.Changed("show-empty") {
		opts.OmitEmptyBuckets = !f.showEmpty
	}
	if flags.Changed("rating-floor") {
		opts.RatingFloor = f.ratingFloor
	}
	if flags.Changed("max-min-investment") {
		if f.maxMinInvestment < 0 {
			return opts, fmt.Errorf("--max-min-investment must not be negative")
		}
		opts.MaxMinInvestment = f.maxMinInvestment
	}
	if f.today != "" {
		d, err := time.Parse("2006-01-02", f.today)
		if err != nil {
			return opts, fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
		}
		opts.Today = d
	}
	for name, n := range map[string]int{"--top": opts.TopN, "--message-top": opts.MessageTopN} {
		if n < 1 || n > 20 {
			return opts, fmt.Errorf("%s must be between 1 and 20", name)
		}
	}
	return opts, nil
}

func newProcessCmd(c *cli) *cobra.Command {
	var (
		pf     processFlags
		asCSV  bool
		asXLSX bool
		outDir string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "process FILE|DIR",
		Short: "Process a workbook and print the messages",
		Long: `Processes the offers workbook and prints the rendered messages.
When a directory is given, its most recent workbook is used.

Examples:
  destaques process ofertas.xlsx --today 2026-10-14
  destaques process data/ --rating-floor A --csv --xlsx
  destaques process ofertas.xlsx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services.NewDestaquesService(c.cfg, nil, c.logger)

			opts, err := pf.options(cmd, svc.DefaultOptions())
			if err != nil {
				return err
			}

			res, err := c.process(cmd, svc, args[0], opts)
			if err != nil {
				return err
			}

			if asCSV || asXLSX {
				if outDir == "" {
					paths, err := config.GetPaths(c.cfg.Paths)
					if err != nil {
						return err
					}
					outDir = paths.ExportsDir
				}
				if err := validation.NewWorkbookValidator(c.cfg.Security.MaxUploadBytes, c.logger).ValidateOutputDirectory(outDir); err != nil {
					return err
				}
				written, err := svc.SaveExports(cmd.Context(), res, outDir, asCSV, asXLSX)
				if err != nil {
					return err
				}
				for _, p := range written {
					fmt.Fprintln(cmd.ErrOrStderr(), "wrote", p)
				}
			}

			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}

	pf.register(cmd)
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the ranked table as CSV")
	cmd.Flags().BoolVar(&asXLSX, "xlsx", false, "write the ranked table as XLSX")
	cmd.Flags().StringVar(&outDir, "out", "", "export directory (default: configured exports dir)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

// process resolves target to a workbook and runs the pipeline on it
func (c *cli) process(cmd *cobra.Command, svc *services.DestaquesService, target string, opts services.ProcessOptions) (*services.Result, error) {
	path, err := resolveWorkbook(target)
	if err != nil {
		return nil, err
	}

	data, err := validation.NewWorkbookValidator(c.cfg.Security.MaxUploadBytes, c.logger).ValidateFile(path)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(cmd.Context(), "Processing workbook", slog.String("file", path))
	res, err := svc.Process(cmd.Context(), data, opts)
	if err != nil {
		infrastructure.WithError(c.logger, err).ErrorContext(cmd.Context(), "Processing failed", slog.String("file", path))
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	return res, nil
}

// resolveWorkbook returns target itself, or the latest workbook inside it
// when target is a directory
func resolveWorkbook(target string) (string, error) {
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return target, nil
	}
	latest, err := files.NewDiscovery("").LatestWorkbook(target)
	if err != nil {
		return "", err
	}
	return latest.Path, nil
}

func printResult(w io.Writer, res *services.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintln(w, res.Messages.Combined)
	return err
}
