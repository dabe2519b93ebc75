package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/rhythm/internal/simulate"
)

// Default configuration constants.
const (
	defaultUsers       = 30
	defaultDays        = 30
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users   = flag.Int("users", defaultUsers, "Number of synthetic users")
		days    = flag.Int("days", defaultDays, "Days of history per user")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submissions")
		seed    = flag.Int64("seed", 1, "Generator seed")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output  = flag.String("output", "", "Write the generated inputs to this JSON file")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Log every user result")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	log, closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	runner := simulate.NewRunner(simulate.Config{
		BaseURL:    *baseURL,
		Users:      *users,
		Days:       *days,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		OutputFile: *output,
		Verbose:    *verbose,
	}, log)

	if _, err := runner.Run(ctx); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
