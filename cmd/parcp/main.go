// Command parcp copies a file (or tree) by splitting it into byte ranges and
// copying the ranges in parallel with positional I/O.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parcp/parcp/internal/config"
	"github.com/parcp/parcp/internal/engine"
	"github.com/parcp/parcp/internal/event"
	"github.com/parcp/parcp/internal/stats"
	"github.com/parcp/parcp/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

//nolint:gocyclo // main CLI entry point orchestrates flag parsing and wiring
func run() int {
	var (
		workers       int
		recursive     bool
		verifyFlag    bool
		checksumFlag  bool
		verbose       bool
		quiet         bool
		noProgress    bool
		useIOURing    bool
		bwLimitStr    string
		logFile       string
		benchmarkFlag bool
		showVersion   bool
	)

	rootCmd := &cobra.Command{
		Use:   "parcp [flags] <source> <destination>",
		Short: "Parallel ranged file copy with post-copy verification",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "parcp %s\n", version)
				return nil
			}

			src := args[0]
			dst := args[1]

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults,
				&workers, &verifyFlag, &checksumFlag, &useIOURing, &bwLimitStr)

			// Parse bandwidth limit.
			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = engine.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			slog.SetDefault(slog.New(logHandler))

			// Default workers.
			workersExplicit := cmd.Flags().Changed("workers")
			if workers <= 0 {
				workers = min(runtime.NumCPU()*2, 32)
			}

			// Benchmark mode: measure throughput and auto-tune workers.
			if benchmarkFlag {
				benchResult, benchErr := engine.RunBenchmark(context.Background(), src, dst)
				if benchErr != nil {
					slog.Warn("benchmark failed", "error", benchErr)
				} else {
					fmt.Fprintln(os.Stderr, engine.FormatBenchmark(benchResult))
					if !workersExplicit {
						workers = benchResult.SuggestedWorkers
					}
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.Int64("bytes", ev.Bytes),
							slog.Int("worker", ev.Worker),
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "parcp.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			presenter := ui.NewPresenter(ui.Config{
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
				IsTTY:      ui.IsTTY(os.Stderr.Fd()),
				Quiet:      quiet,
				Verbose:    verbose,
				NoProgress: noProgress,
				Stats:      collector,
				SrcRoot:    src,
			})

			slog.Debug("starting copy",
				"src", src,
				"dst", dst,
				"workers", workers,
				"recursive", recursive,
				"iouring", useIOURing,
			)

			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			result := engine.Run(ctx, engine.Config{
				Src:        src,
				Dst:        dst,
				Workers:    workers,
				Recursive:  recursive,
				Verify:     verifyFlag,
				Checksum:   checksumFlag,
				UseIOURing: useIOURing,
				BWLimit:    bwLimit,
				Events:     events,
				Stats:      collector,
			})
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				summary := presenter.Summary()
				if summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if result.Err != nil {
				slog.Error("copy failed", "error", result.Err)
				return &exitError{code: 1}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().
		IntVarP(&workers, "workers", "n", 0, "number of copy workers (default: min(NumCPU*2, 32))")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "copy directories recursively")
	rootCmd.Flags().
		BoolVar(&verifyFlag, "verify", false, "byte-compare source and destination after copy")
	rootCmd.Flags().
		BoolVar(&checksumFlag, "checksum", false, "compare BLAKE3 checksums after copy")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().
		BoolVar(&useIOURing, "iouring", false, "use io_uring for range copy (Linux only)")
	rootCmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().
		BoolVar(&benchmarkFlag, "benchmark", false, "measure throughput before copy and auto-tune workers")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	workers *int,
	verify, checksum, iouring *bool,
	bwLimit *string,
) {
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("checksum") && defaults.Checksum != nil {
		*checksum = *defaults.Checksum
	}
	if !cmd.Flags().Changed("iouring") && defaults.IOURing != nil {
		*iouring = *defaults.IOURing
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
