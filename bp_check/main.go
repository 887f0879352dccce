package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MelchiorLoze/valorant-battlepass-tracker/battlepass"
	"github.com/MelchiorLoze/valorant-battlepass-tracker/config"
	"github.com/MelchiorLoze/valorant-battlepass-tracker/errlog"
	"github.com/MelchiorLoze/valorant-battlepass-tracker/history"
	"github.com/MelchiorLoze/valorant-battlepass-tracker/riot"
)

const toolName = "bp_check"

var now = time.Now

type options struct {
	contractID string
	epilogue   bool
	reset      bool
	noHistory  bool
	verbose    bool
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the tool and returns the process exit code. Failures end up in
// the log file, stderr only gets a short notice.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	sink, err := errlog.Open(config.LogFile())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", toolName, err)
		return 1
	}
	defer sink.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg, err := config.Load()
	if err == nil {
		if level, err := cfg.Level(); err == nil {
			log.SetLevel(level)
		}
	}

	sink.Attach(log)

	fail := func(err error) int {
		log.Error(err)
		fmt.Fprintf(stderr, "Could not read battlepass progress, see %s\n", sink.Path())
		return 1
	}

	if err != nil {
		return fail(err)
	}

	cmd := newRootCmd(cfg, log)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		return fail(err)
	}

	return 0
}

func newRootCmd(cfg config.Config, log *logrus.Logger) *cobra.Command {
	opts := options{contractID: cfg.ContractID}

	cmd := &cobra.Command{
		Use:           toolName,
		Short:         "Show Valorant battlepass progress and the time left in the act",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
				log.SetLevel(logrus.DebugLevel)
				return nil
			}

			_, err := cfg.Level()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(cmd.Context(), cfg, opts, log, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.contractID, "contract", "c", opts.contractID, "battlepass contract definition id")
	flags.BoolVarP(&opts.epilogue, "epilogue", "e", true, "include the epilogue tiers")
	flags.BoolVar(&opts.reset, "reset", false, "clear cached credentials before resolving")
	flags.BoolVar(&opts.noHistory, "no-history", false, "do not record this run in the history database")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	return cmd
}

func check(ctx context.Context, cfg config.Config, opts options, log *logrus.Logger, out io.Writer) error {
	client := riot.Open(riot.Options{
		Endpoints:    cfg.Endpoints,
		LocalAppData: cfg.LocalAppData,
		Timeout:      cfg.HTTPTimeout,
		Logger:       log,
	})

	store := riot.NewCacheStore(cfg.CacheFile)

	if opts.reset {
		if err := store.Clear(); err != nil {
			return err
		}
	}

	tracker := riot.NewTracker(riot.NewResolver(store, client, log), client, log)

	creds, contract, err := tracker.Progress(ctx, opts.contractID)
	if err != nil {
		return err
	}

	season, err := client.FetchActiveSeasonEnd(ctx, creds)
	if err != nil {
		return err
	}

	report := battlepass.Report{
		Earned:       contract.ContractProgression.TotalProgressionEarned,
		Level:        contract.ProgressionLevelReached,
		ShowEpilogue: opts.epilogue,
		SeasonEnd:    season.End,
		Now:          now(),
		Offset:       cfg.TZOffset,
	}

	if !opts.noHistory {
		recordSnapshot(ctx, cfg.HistoryDB, log, &report, opts.contractID)
	}

	return report.Render(out)
}

// recordSnapshot stores this run and fills in the XP gained since the last
// one. History is optional, failures are only logged.
func recordSnapshot(ctx context.Context, path string, log *logrus.Logger, report *battlepass.Report, contractID string) {
	store, err := history.Open(path)
	if err != nil {
		log.Warn(err)
		return
	}
	defer store.Close()

	previous, found, err := store.Latest(ctx, contractID)
	if err != nil {
		log.Warn(err)
		return
	}

	if found {
		report.HasPrevious = true
		report.Gained = report.Earned - previous.XPEarned
	}

	err = store.Record(ctx, history.Snapshot{
		TakenAt:      report.Now,
		ContractID:   contractID,
		XPEarned:     report.Earned,
		LevelReached: report.Level,
	})
	if err != nil {
		log.Warn(err)
	}
}
