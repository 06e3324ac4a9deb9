package loadtest

import (
	"fmt"
	"os"

	"github.com/okian/homeval/pkg/logger"
)

// SetupLogging initializes the global logger, additionally writing to
// logFile when it is set.
func SetupLogging(logFile string) error {
	var opts []logger.Option
	if logFile != "" {
		opts = append(opts, logger.WithFile(logFile))
	}
	if err := logger.Init(opts...); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`homeval load test
=================

Submits concurrent prediction requests to a running homeval service and
checks every answer: numeric input must be priced, non-numeric free-text
input must be rejected, and replaying a request must return the same value.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -requests int
        Number of prediction requests (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -invalid float
        Share of requests with a non-numeric field (default 0.1)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write requests and answers to this JSON file
  -log string
        Also write logs to this file
  -verbose
        Log every failed request
  -help
        Show this help message
`)
}
