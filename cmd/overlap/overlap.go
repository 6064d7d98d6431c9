package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/anrid/overlap/pkg/config"
	"github.com/anrid/overlap/pkg/interference"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("overlap", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of overlap:\n")
		flags.PrintDefaults()
	}
	flags.StringP("receptions", "r", "", "Path or URL to a CSV file of receptions (receiver,transmission,transmitter,start,end). Times take a unit suffix (s, ms, us, ns, ps); bare numbers are seconds.")
	flags.StringP("windows", "w", "", "Path or URL to a CSV file of query windows (receiver,start,end).")
	flags.String("purge-before", "", "Drop receptions that ended before this time before answering queries (e.g. 1.5ms).")
	flags.String("format", config.DefaultFormat, "Output format: table or csv.")
	flags.Bool("check", false, "Verify the internal consistency of every reception tree after loading.")
	flags.Bool("verbose", false, "Verbose output, helps when troubleshooting.")
	configFile := flags.StringP("config", "c", "", "Optional YAML config file. Flags and OVERLAP_* environment variables take precedence.")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "overlap: %s\n\n", err)
		flags.Usage()
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	params, err := cfg.Params(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := interference.Run(ctx, params)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	if err := report.Render(os.Stdout, cfg.Format); err != nil {
		logger.Error("could not write report", "error", err)
		return 1
	}

	return 0
}
