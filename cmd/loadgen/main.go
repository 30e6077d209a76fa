package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/edithlab/growthboard/internal/loadgen"
	"github.com/edithlab/growthboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultUsers       = 50
	defaultEventsPer   = 20
	defaultSubsPer     = 2
	defaultDays        = 14
	defaultTimeout     = 10 * time.Second
	defaultRunDeadline = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users       = flag.Int("users", defaultUsers, "Number of synthetic accounts to provision")
		eventsPer   = flag.Int("events", defaultEventsPer, "Activity events to post per user")
		subsPer     = flag.Int("submissions", defaultSubsPer, "Post URLs to replay per user")
		workers     = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent senders")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		days        = flag.Int("days", defaultDays, "Day span event timestamps scatter across")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunDeadline)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:            *baseURL,
		Users:              *users,
		EventsPerUser:      *eventsPer,
		SubmissionsPerUser: *subsPer,
		Workers:            *workers,
		Timeout:            *timeout,
		Days:               *days,
		Verbose:            *verbose,
	}

	if err := loadgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
