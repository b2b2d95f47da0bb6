// Package domain drives candidates from the input through the WHOIS engine
package domain

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/dns"
	"github.com/mallocator/free-domains/pkg/label"
	"github.com/mallocator/free-domains/pkg/logger"
	"github.com/mallocator/free-domains/pkg/metrics"
	"github.com/mallocator/free-domains/pkg/output"
	"github.com/mallocator/free-domains/pkg/registry"
	"github.com/mallocator/free-domains/pkg/state"
	"github.com/mallocator/free-domains/pkg/whois"
)

const maxLineSize = 1024 * 1024

// Summary counts what happened to the input lines of one run
type Summary struct {
	Lines      int // lines read, including skipped ones
	Skipped    int // lines skipped by position
	Filtered   int // empty or out of length bounds after normalization
	Invalid    int // not a valid host label
	Queried    int // WHOIS sequences run
	Free       int
	Registered int
	GaveUp     int

	FreeDomains []string

	// Position is the number of leading lines fully handled; pass it as the
	// skip value to continue an interrupted run
	Position int
}

// Processor handles domain processing operations
type Processor struct {
	cfg     *config.Config
	log     *logger.Logger
	whois   *whois.Checker
	dns     *dns.Checker
	sink    *output.Writer
	state   *state.Manager
	metrics *metrics.Metrics
	profile registry.Profile
}

// New creates a new domain processor. dnsChecker may be nil to disable the
// pre-check.
func New(cfg *config.Config, log *logger.Logger, whoisChecker *whois.Checker, dnsChecker *dns.Checker,
	sink *output.Writer, stateManager *state.Manager, m *metrics.Metrics, profile registry.Profile) *Processor {
	return &Processor{
		cfg:     cfg,
		log:     log,
		whois:   whoisChecker,
		dns:     dnsChecker,
		sink:    sink,
		state:   stateManager,
		metrics: m,
		profile: profile,
	}
}

// Run processes every line of r in order. It returns ctx.Err() together with
// the summary so far when the run is interrupted, and an error if the input
// cannot be read or a free domain cannot be recorded.
func (p *Processor) Run(ctx context.Context, r io.Reader) (Summary, error) {
	var sum Summary

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			p.checkpoint(sum)
			return sum, err
		}

		sum.Lines++
		if sum.Lines <= p.cfg.Skip {
			sum.Skipped++
			sum.Position = sum.Lines
			p.metrics.IncSkipped("position")
			continue
		}

		queried, err := p.process(ctx, scanner.Text(), &sum)
		if err != nil {
			p.checkpoint(sum)
			return sum, err
		}

		sum.Position = sum.Lines
		p.metrics.SetPosition(sum.Position)
		if queried {
			p.checkpoint(sum)
		}
	}
	if err := scanner.Err(); err != nil {
		p.checkpoint(sum)
		return sum, fmt.Errorf("read input: %w", err)
	}
	p.metrics.SetPosition(sum.Position)

	p.log.Infof("Done: %d lines, %d skipped, %d filtered, %d invalid, %d queried, %d free, %d registered, %d gave up; %d written to %s",
		sum.Lines, sum.Skipped, sum.Filtered, sum.Invalid, sum.Queried, sum.Free, sum.Registered, sum.GaveUp,
		p.sink.Count(), p.sink.Path())
	p.state.Clear()
	return sum, nil
}

// process handles one input line. queried reports whether the line reached a
// lookup, which is when the checkpoint is worth updating.
func (p *Processor) process(ctx context.Context, line string, sum *Summary) (queried bool, err error) {
	name := label.Normalize(line)
	if !label.InBounds(name, p.cfg.MinLength, p.cfg.MaxLength) {
		sum.Filtered++
		p.metrics.IncSkipped("length")
		p.log.Debugf("Line %d: %q out of length bounds [%d, %d]", sum.Lines, name, p.cfg.MinLength, p.cfg.MaxLength)
		return false, nil
	}
	if err := label.Validate(name); err != nil {
		sum.Invalid++
		p.metrics.IncSkipped("invalid")
		p.log.Debugf("Line %d: %v", sum.Lines, err)
		return false, nil
	}

	fqdn := p.profile.FQDN(name)

	if p.dns != nil {
		registered, err := p.dns.IsRegistered(ctx, fqdn)
		if err != nil {
			p.log.Debugf("DNS SOA lookup error for %s: %v", fqdn, err)
		} else if registered {
			sum.Registered++
			p.metrics.IncSkipped("dns")
			p.log.Debugf("%s is registered (SOA record)", fqdn)
			return true, nil
		}
	}

	res, err := p.whois.Query(ctx, fqdn, p.profile)
	if err != nil {
		return false, err
	}
	sum.Queried++

	switch res.Outcome {
	case whois.Free:
		if err := p.sink.Append(fqdn); err != nil {
			return true, err
		}
		sum.Free++
		sum.FreeDomains = append(sum.FreeDomains, fqdn)
		p.log.Infof("→ %s is free", fqdn)
	case whois.Registered:
		sum.Registered++
		p.logRegistered(fqdn, res)
	case whois.GaveUp:
		sum.GaveUp++
		p.log.WithField("domain", fqdn).Errorf("No usable response after %d attempts, giving up", res.Attempts)
	}
	return true, nil
}

func (p *Processor) logRegistered(fqdn string, res whois.Result) {
	if !p.log.DebugEnabled() {
		return
	}
	details, err := whois.ParseDetails(res.Response.Output)
	if err != nil {
		p.log.Debugf("%s is registered", fqdn)
		return
	}
	p.log.WithFields(map[string]interface{}{
		"domain":     fqdn,
		"registrar":  details.Registrar,
		"expiration": details.Expiration,
	}).Debug("registered")
}

func (p *Processor) checkpoint(sum Summary) {
	p.state.Save(state.Checkpoint{Position: sum.Position, Free: sum.Free})
}
