// Package dns provides the optional DNS pre-check for the free domain finder.
// A domain that answers with an SOA record is delegated and therefore
// registered, so WHOIS does not need to be asked.
package dns

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/logger"
)

const resolvConf = "/etc/resolv.conf"

// Checker handles DNS operations
type Checker struct {
	cfg    *config.Config
	log    *logger.Logger
	client *dns.Client
}

// New creates a new DNS checker
func New(cfg *config.Config, log *logger.Logger) *Checker {
	return &Checker{
		cfg:    cfg,
		log:    log,
		client: &dns.Client{Timeout: cfg.Timeout},
	}
}

// IsRegistered does a DNS SOA lookup with context timeout.
// Returns true if the domain has an SOA record of its own.
func (c *Checker) IsRegistered(ctx context.Context, domain string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	server, err := c.nameserver()
	if err != nil {
		return false, fmt.Errorf("failed to read DNS config: %w", err)
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeSOA)

	resp, _, err := c.client.ExchangeContext(ctx, m, server)
	if err != nil {
		return false, fmt.Errorf("DNS query failed: %w", err)
	}

	return hasSOA(resp, domain), nil
}

// nameserver returns the configured server or the first one from resolv.conf
func (c *Checker) nameserver() (string, error) {
	if c.cfg.Nameserver != "" {
		if _, _, err := net.SplitHostPort(c.cfg.Nameserver); err != nil {
			return net.JoinHostPort(c.cfg.Nameserver, "53"), nil
		}
		return c.cfg.Nameserver, nil
	}

	conf, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(conf.Servers) == 0 {
		c.log.Debugf("No usable %s, falling back to 8.8.8.8", resolvConf)
		return "8.8.8.8:53", nil
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}

// hasSOA reports whether the answer section holds the SOA of domain itself.
// An NXDOMAIN carries the parent zone's SOA in the authority section instead.
func hasSOA(resp *dns.Msg, domain string) bool {
	if resp == nil || resp.Rcode != dns.RcodeSuccess {
		return false
	}
	for _, rr := range resp.Answer {
		if soa, ok := rr.(*dns.SOA); ok && dns.CanonicalName(soa.Hdr.Name) == dns.CanonicalName(domain) {
			return true
		}
	}
	return false
}
