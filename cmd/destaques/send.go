package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rfdestaques/internal/app"
	"rfdestaques/internal/config"
	"rfdestaques/internal/services"
)

func newSendCmd(c *cli) *cobra.Command {
	var (
		pf     processFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "send FILE|DIR",
		Short: "Process a workbook and send the messages to every group",
		Long: `Processes the offers workbook and sends the Pós, Pré, IPCA and NTN-B
messages, in that order, to every configured group.

With --dry-run the messages and destinations are printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.GetPaths(c.cfg.Paths)
			if err != nil {
				return err
			}
			svc, err := app.NewServices(c.cfg, paths, nil, c.logger)
			if err != nil {
				return err
			}

			opts, err := pf.options(cmd, svc.Destaques.DefaultOptions())
			if err != nil {
				return err
			}
			res, err := c.process(cmd, svc.Destaques, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				return printDryRun(out, res, svc.Dispatch)
			}
			if svc.Dispatch == nil {
				return services.ErrMessagingNotConfigured
			}

			summary, err := svc.Dispatch.Send(cmd.Context(), res.Messages)
			if err != nil {
				return err
			}
			printSummary(out, summary)
			if summary.Failed > 0 {
				return errors.New("some messages were not delivered")
			}
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the messages without sending")
	return cmd
}

func printDryRun(w io.Writer, res *services.Result, dispatch *services.DispatchService) error {
	if dispatch == nil {
		fmt.Fprintln(w, "# messaging is not configured")
	} else {
		for _, d := range dispatch.Destinations() {
			fmt.Fprintf(w, "# destination %s (%s)\n", d.Name, d.ID)
		}
	}
	for i, msg := range res.Messages.Outbound() {
		fmt.Fprintf(w, "# message %d\n%s\n\n", i+1, msg)
	}
	return nil
}

func printSummary(w io.Writer, summary *services.DispatchSummary) {
	for _, g := range summary.Groups {
		status := "ok"
		if n := g.Failed(); n > 0 {
			status = fmt.Sprintf("%d failed", n)
		}
		fmt.Fprintf(w, "%-20s %d messages, %s", g.Group, len(g.Results), status)
		if g.Mentioned {
			fmt.Fprintf(w, ", %d mentions", g.MentionCount)
		}
		if g.Warning != "" {
			fmt.Fprintf(w, " (%s)", g.Warning)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "sent %d, failed %d\n", summary.Sent, summary.Failed)
}
