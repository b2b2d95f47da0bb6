// Package whois provides the WHOIS polling engine for the free domain finder
package whois

import (
	"context"
	"time"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/logger"
	"github.com/mallocator/free-domains/pkg/metrics"
	"github.com/mallocator/free-domains/pkg/registry"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Attempt records one transport call and its evaluation
type Attempt struct {
	Number   int
	Delay    time.Duration
	Response Response
	Verdict  Verdict
}

// Result is the outcome of querying one domain
type Result struct {
	Domain   string
	Outcome  Outcome
	Attempts int

	// Delay is the pacing delay in effect when the sequence ended
	Delay time.Duration

	// Response of the last attempt
	Response Response
}

// Checker handles WHOIS operations
type Checker struct {
	cfg       *config.Config
	log       *logger.Logger
	transport Transport
	metrics   *metrics.Metrics
	sleep     SleepFunc
}

// New creates a new WHOIS checker
func New(cfg *config.Config, log *logger.Logger, transport Transport, m *metrics.Metrics) *Checker {
	return &Checker{
		cfg:       cfg,
		log:       log,
		transport: transport,
		metrics:   m,
		sleep:     sleepContext,
	}
}

// SetSleeper replaces the function used for pacing and backoff waits
func (c *Checker) SetSleeper(fn SleepFunc) {
	c.sleep = fn
}

// Query runs the full attempt sequence for domain. Every attempt is preceded
// by a wait, starting at the configured backoff. Transient failures double the
// wait; once it reaches the give-up threshold the domain is reported as GaveUp.
// The only error returned is the context's, when the run is interrupted.
func (c *Checker) Query(ctx context.Context, domain string, profile registry.Profile) (Result, error) {
	res := Result{Domain: domain, Delay: c.cfg.Backoff}

	for {
		if err := c.sleep(ctx, res.Delay); err != nil {
			return res, err
		}

		attempt := c.attempt(ctx, domain, res.Attempts+1, res.Delay, profile)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempts = attempt.Number
		res.Response = attempt.Response

		if !attempt.Verdict.Transient() {
			res.Outcome = Evaluate(attempt.Response.Output, profile)
			c.metrics.IncOutcome(res.Outcome.String())
			return res, nil
		}

		c.metrics.IncRetry(attempt.Verdict.String())
		res.Delay *= 2
		if res.Delay >= c.cfg.GiveUp {
			res.Outcome = GaveUp
			c.metrics.IncOutcome(res.Outcome.String())
			return res, nil
		}

		c.log.Warnf("%s: %s on attempt %d, waiting %s", domain, attempt.Verdict, attempt.Number, res.Delay)
	}
}

func (c *Checker) attempt(ctx context.Context, domain string, n int, delay time.Duration, profile registry.Profile) Attempt {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp := c.transport.Call(callCtx, domain)
	c.metrics.IncAttempt()
	c.metrics.ObserveCall(start)

	a := Attempt{
		Number:   n,
		Delay:    delay,
		Response: resp,
		Verdict:  Classify(resp, profile, c.cfg.MinResponseLength),
	}

	c.log.WithFields(map[string]interface{}{
		"domain":  domain,
		"attempt": a.Number,
		"status":  resp.Status,
		"bytes":   len(resp.Output),
		"verdict": a.Verdict.String(),
	}).Debug("whois attempt")
	if resp.Errors != "" {
		c.log.Debugf("%s: whois error output: %s", domain, resp.Errors)
	}
	if c.cfg.Debug {
		c.log.Debugf("%s: whois response:\n%s", domain, resp.Output)
	}
	return a
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
