package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MelchiorLoze/valorant-battlepass-tracker/config"
	"github.com/MelchiorLoze/valorant-battlepass-tracker/history"
)

const toolName = "bp_history"

type options struct {
	since      string
	contractID string
	out        string
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", toolName, err)
		return 1
	}

	cmd := newRootCmd(cfg)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", toolName, err)
		return 1
	}

	return 0
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           toolName,
		Short:         "Inspect the battlepass snapshots recorded by bp_check",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.since, "since", "s", "", "only snapshots taken at or after this date")
	root.PersistentFlags().StringVarP(&opts.contractID, "contract", "c", "", "only snapshots of this contract")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print snapshots as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshots, err := load(cmd.Context(), cfg.HistoryDB, opts)
			if err != nil {
				return err
			}

			return writeCSV(cmd.OutOrStdout(), snapshots, time.Now())
		},
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write snapshots to a parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshots, err := load(cmd.Context(), cfg.HistoryDB, opts)
			if err != nil {
				return err
			}

			if err := history.ExportParquet(cmd.Context(), snapshots, opts.out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d snapshots to %s\n", len(snapshots), opts.out)

			return nil
		},
	}

	export.Flags().StringVarP(&opts.out, "out", "o", "history.parquet", "parquet file to write")

	root.AddCommand(list, export)

	return root
}

func load(ctx context.Context, path string, opts options) ([]history.Snapshot, error) {
	filter := history.Filter{ContractID: opts.contractID}

	if opts.since != "" {
		since, err := dateparse.ParseLocal(opts.since)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %s", opts.since)
		}

		filter.Since = since
	}

	store, err := history.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.List(ctx, filter)
}

// writeCSV prints one row per snapshot with the XP gained since the previous
// snapshot of the same contract.
func writeCSV(w io.Writer, snapshots []history.Snapshot, at time.Time) error {
	if _, err := fmt.Fprintf(w, "Time,Age,Contract,XP,Tier,Gained\n"); err != nil {
		return err
	}

	last := make(map[string]int)

	for _, snap := range snapshots {
		gained := 0
		if previous, ok := last[snap.ContractID]; ok {
			gained = snap.XPEarned - previous
		}
		last[snap.ContractID] = snap.XPEarned

		_, err := fmt.Fprintf(w, "%s,%s,%s,%d,%d,%d\n",
			snap.TakenAt.Format("2006-01-02 15:04 Z0700"),
			humanize.RelTime(snap.TakenAt, at, "ago", "from now"),
			snap.ContractID,
			snap.XPEarned,
			snap.LevelReached,
			gained,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
