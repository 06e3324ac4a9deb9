package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/homeval/internal/loadtest"
	"github.com/okian/homeval/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests     = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultInvalidRatio = 0.1
	defaultTimeout      = 10 * time.Second
	defaultTestTimeout  = 5 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8080", "Base URL of the service")
		requests     = flag.Int("requests", defaultRequests, "Number of prediction requests")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		invalidRatio = flag.Float64("invalid", defaultInvalidRatio, "Share of requests with a non-numeric field")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile   = flag.String("output", "", "Write requests and answers to this JSON file")
		logFile      = flag.String("log", "", "Also write logs to this file")
		verbose      = flag.Bool("verbose", false, "Log every failed request")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFile); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:      *baseURL,
		Requests:     *requests,
		Workers:      *workers,
		Timeout:      *timeout,
		InvalidRatio: *invalidRatio,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if _, err := loadtest.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		_ = logger.Sync()
		cancel()
		os.Exit(1)
	}
}
