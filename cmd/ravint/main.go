package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lanish19/ravint22-sub001/internal/analysis"
	"github.com/lanish19/ravint22-sub001/internal/config"
	"github.com/lanish19/ravint22-sub001/internal/events"
	"github.com/lanish19/ravint22-sub001/internal/invoker"
	"github.com/lanish19/ravint22-sub001/internal/persistence"
	"github.com/lanish19/ravint22-sub001/internal/pipeline"
	"github.com/lanish19/ravint22-sub001/internal/provider"
)

func main() {
	question := flag.String("question", "", "question to analyze (required)")
	providerName := flag.String("provider", "", "provider name from config (overrides the configured default)")
	historyPath := flag.String("history", "", "SQLite path for run history (overrides config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	printJSON := flag.Bool("json", false, "print the full result values as JSON")
	flag.Parse()

	if *question == "" {
		fmt.Fprintln(os.Stderr, "Usage: ravint -question \"...\" [-provider name] [-history path.db] [-json]")
		os.Exit(2)
	}

	// Signal-aware context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	name := cfg.Provider
	if *providerName != "" {
		name = *providerName
	}
	pc, ok := cfg.Providers[name]
	if !ok || pc.Command == "" {
		fmt.Fprintf(os.Stderr, "No provider %q configured; add one under providers: in ~/.ravint/config.yaml\n", name)
		os.Exit(1)
	}
	prov := provider.NewCommand(pc.Command, pc.Args...)

	bus := events.NewBus()
	logger := events.NewLogger(os.Stderr, parseLevel(*logLevel))
	logDone := events.AttachLogger(bus, logger)

	inv := invoker.New(bus,
		invoker.WithRetryConfig(invoker.RetryConfig{
			InitialInterval:     time.Duration(cfg.Retry.InitialInterval),
			MaxInterval:         time.Duration(cfg.Retry.MaxInterval),
			Multiplier:          cfg.Retry.Multiplier,
			RandomizationFactor: cfg.Retry.RandomizationFactor,
		}),
		invoker.WithBreakers(invoker.NewBreakerRegistry()),
	)

	graph, err := analysis.Graph(prov, name, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building pipeline: %v\n", err)
		os.Exit(1)
	}

	coord := pipeline.NewCoordinator(graph, inv, bus,
		pipeline.WithInputSchema(analysis.InputSchema()))

	res := coord.Run(ctx, map[string]any{"question": *question})

	// Flush diagnostics before printing the report.
	bus.Close()
	<-logDone

	fmt.Println(res.Summary)

	if *printJSON {
		data, err := json.MarshalIndent(res.Values, "", "  ")
		if err != nil {
			log.Printf("Error encoding result values: %v", err)
		} else {
			fmt.Println(string(data))
		}
	}

	dbPath := cfg.HistoryPath
	if *historyPath != "" {
		dbPath = *historyPath
	}
	if dbPath != "" {
		if err := saveHistory(dbPath, *question, res); err != nil {
			log.Printf("Error saving run history: %v", err)
		}
	}

	if res.Status == pipeline.StatusHalted {
		os.Exit(1)
	}
}

// saveHistory records the finished run in the history database.
func saveHistory(dbPath, question string, res *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := persistence.NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveResult(ctx, question, res)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
