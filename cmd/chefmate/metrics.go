package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Inspect recorded action metrics",
	}

	var days int
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Show per-day action totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if rt.Metrics == nil {
				return errors.New("metrics are not enabled")
			}
			usage, err := rt.Metrics.GetDailyUsage(cmd.Context(), days)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tACTIONS\tFAILURES\tITEMS\tAVG LATENCY\tPROMPT TOKENS\tCOMPLETION TOKENS")
			for _, u := range usage {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0fms\t%d\t%d\n", u.Date, u.Actions, u.Failures, u.Items, u.AvgLatencyMS, u.PromptTokens, u.CompletionTokens)
			}
			return w.Flush()
		},
	}
	daily.Flags().IntVar(&days, "days", 7, "number of days to show")

	var olderThan int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if rt.Metrics == nil {
				return errors.New("metrics are not enabled")
			}
			n, err := rt.Metrics.Cleanup(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d metrics\n", n)
			return nil
		},
	}
	cleanup.Flags().IntVar(&olderThan, "older-than", 30, "remove metrics older than this many days")

	cmd.AddCommand(daily, cleanup)
	return cmd
}
