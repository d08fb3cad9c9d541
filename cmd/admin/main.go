package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-settlement/internal/app"
	"github.com/riskibarqy/fantasy-settlement/internal/config"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

var errUsage = errors.New("usage")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Reports go to stdout; logs go to stderr so the JSON stays pipeable.
	logger := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		Output:         os.Stderr,
		ServiceName:    cfg.ServiceName + "-admin",
		ServiceVersion: cfg.ServiceVersion,
	})
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := 0
	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			logger.Error("admin command failed", "error", err)
		}
		code = 1
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return errUsage
	}
	// A CLI invocation never runs the background loop.
	cfg.SchedulerEnabled = false

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	return runCommand(ctx, container, args, out)
}

func runCommand(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch name {
	case "settle":
		round := fs.Int("round", 0, "round number")
		noPrices := fs.Bool("no-prices", false, "skip price adjustment")
		noHistory := fs.Bool("no-history", false, "skip price history rows")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		opts := settlement.Options{ApplyPrices: !*noPrices, WritePriceHistory: !*noHistory}
		report, err := c.Settlement.Settle(ctx, *round, opts)
		if err != nil {
			return err
		}
		return writeReport(out, report)

	case "recover":
		round := fs.Int("round", 0, "round number")
		apply := fs.Bool("apply", false, "persist recovered lineups; default is a dry run")
		recalc := fs.Bool("recalculate", false, "re-settle points after apply")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		report, err := c.Recovery.Recover(ctx, usecase.LineupRecoveryInput{
			RoundNumber:       *round,
			Apply:             *apply,
			RecalculatePoints: *recalc,
		})
		if err != nil {
			return err
		}
		return writeReport(out, report)

	case "close":
		round := fs.Int("round", 0, "round number")
		force := fs.Bool("force", false, "close even when fixtures are not finished")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		result, err := c.Scheduler.CloseRound(ctx, *round, *force)
		if err != nil {
			return err
		}
		return writeReport(out, result)

	case "reopen":
		round := fs.Int("round", 0, "round number")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := c.Scheduler.ReopenRound(ctx, *round); err != nil {
			return err
		}
		return writeReport(out, map[string]any{"round_number": *round, "reopened": true})

	case "standings":
		league := fs.Int64("league", 0, "private league id; 0 is the global table")
		upTo := fs.Int("up-to-round", 0, "last round to include; 0 is every round")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		standings, err := c.Standings.Build(ctx, usecase.StandingsInput{LeagueID: *league, UpToRound: *upTo})
		if err != nil {
			return err
		}
		return writeReport(out, standings)

	case "run-once":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return writeReport(out, c.Scheduler.RunOnce(ctx))

	default:
		printUsage(os.Stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func writeReport(out io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: admin <command> [flags]")
	fmt.Fprintln(w, "  settle     -round N [-no-prices] [-no-history]")
	fmt.Fprintln(w, "  recover    -round N [-apply] [-recalculate]")
	fmt.Fprintln(w, "  close      -round N [-force]")
	fmt.Fprintln(w, "  reopen     -round N")
	fmt.Fprintln(w, "  standings  [-league ID] [-up-to-round N]")
	fmt.Fprintln(w, "  run-once")
}
