// Package main provides a tool that turns a list of keywords into domain names
// and records the ones that are not registered yet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/dns"
	"github.com/mallocator/free-domains/pkg/domain"
	"github.com/mallocator/free-domains/pkg/logger"
	"github.com/mallocator/free-domains/pkg/metrics"
	"github.com/mallocator/free-domains/pkg/notify"
	"github.com/mallocator/free-domains/pkg/output"
	"github.com/mallocator/free-domains/pkg/registry"
	"github.com/mallocator/free-domains/pkg/state"
	"github.com/mallocator/free-domains/pkg/whois"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one search and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log := logger.NewWithWriters(stdout, stderr)
	cfg := config.New(log)

	if err := cfg.LoadFromFile(os.Getenv("CONFIG_FILE")); err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}
	cfg.LoadFromEnv()

	if err := cfg.ParseArgs(args, stdout); err != nil {
		// help ends the run like any other usage print
		if errors.Is(err, config.ErrHelp) {
			return exitUsage
		}
		fmt.Fprintln(stderr, err)
		cfg.Usage(stderr)
		return exitUsage
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, registry.ErrUnsupportedTLD) {
			fmt.Fprintf(stderr, "Supported TLDs: %s\n", strings.Join(registry.Supported(), ", "))
		}
		return exitUsage
	}

	// Validate already rejected unknown TLDs
	profile, _ := registry.Lookup(cfg.TLD)

	transport, err := whois.NewTransport(cfg, profile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if cfg.Debug {
		log.SetDebug(true)
	}
	cfg.Debug = log.DebugEnabled()

	if cfg.LogFile != "" {
		if err := log.AddFile(cfg.LogFile); err != nil {
			fmt.Fprintf(stderr, "Failed to open log file %s: %v\n", cfg.LogFile, err)
			return exitError
		}
		defer log.Close()
	}

	input, err := os.Open(cfg.InputFile)
	if err != nil {
		log.Errorf("Failed to open input file: %v", err)
		return exitError
	}
	defer input.Close()

	stateManager := state.New(cfg, log)
	if cfg.Resume {
		if cp, ok := stateManager.Load(); ok && cp.Position > cfg.Skip {
			log.Infof("Resuming %s after line %d", cfg.InputFile, cp.Position)
			cfg.Skip = cp.Position
		} else if !ok {
			log.Infof("No checkpoint for %s, starting at line %d", cfg.InputFile, cfg.Skip+1)
		}
	}

	sink, err := output.Open(cfg.Output())
	if err != nil {
		log.Errorf("Failed to open output file: %v", err)
		return exitError
	}
	defer sink.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Errorf("Metrics endpoint on %s failed: %v", cfg.MetricsAddr, err)
			}
		}()
	}

	var dnsChecker *dns.Checker
	if cfg.DNSPrecheck {
		dnsChecker = dns.New(cfg, log)
	}

	checker := whois.New(cfg, log, transport, m)
	processor := domain.New(cfg, log, checker, dnsChecker, sink, stateManager, m, profile)

	log.Infof("Checking .%s domains from %s, writing free ones to %s", profile.TLD, cfg.InputFile, sink.Path())

	sum, err := processor.Run(ctx, input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warnf("Interrupted after line %d; continue with --skip=%d or --resume", sum.Position, sum.Position)
			return exitError
		}
		log.Errorf("Run failed after line %d: %v", sum.Position, err)
		return exitError
	}

	notify.New(cfg, log).SendSummary(profile.TLD, sum.FreeDomains)
	return exitOK
}
