package whois

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	lwhois "github.com/likexian/whois"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/registry"
)

// Exit statuses reported by transports. Anything >= StatusError is an error.
const (
	StatusOK      = 0
	StatusNoMatch = 1
	StatusError   = 2
)

// Response is the raw result of one WHOIS call
type Response struct {
	Output string
	Errors string
	Status int
}

// Transport performs a single WHOIS call. Failures are reported through the
// response status and error text, never as a Go error.
type Transport interface {
	Call(ctx context.Context, domain string) Response
}

// NewTransport builds the transport selected in the configuration
func NewTransport(cfg *config.Config, profile registry.Profile) (Transport, error) {
	switch cfg.Transport {
	case config.TransportCommand:
		return NewCommandTransport(cfg.WhoisCommand)
	case config.TransportClient, "":
		server := cfg.WhoisServer
		if server == "" {
			server = profile.Server
		}
		return NewClientTransport(server, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", config.ErrInvalid, cfg.Transport)
	}
}

// ClientTransport talks WHOIS over TCP directly
type ClientTransport struct {
	client *lwhois.Client
	server string
}

// NewClientTransport creates a socket transport asking server, or the
// IANA-discovered server when server is empty. Query stats are disabled so
// Output is the registry's body byte for byte.
func NewClientTransport(server string, timeout time.Duration) *ClientTransport {
	return &ClientTransport{
		client: lwhois.NewClient().SetTimeout(timeout).SetDisableStats(true),
		server: server,
	}
}

// Call queries the WHOIS server, giving up when ctx is done
func (t *ClientTransport) Call(ctx context.Context, domain string) Response {
	type result struct {
		raw string
		err error
	}
	ch := make(chan result, 1)

	go func() {
		var servers []string
		if t.server != "" {
			servers = append(servers, t.server)
		}
		raw, err := t.client.Whois(domain, servers...)
		ch <- result{raw: raw, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return Response{Output: r.raw, Errors: r.err.Error(), Status: StatusError}
		}
		return Response{Output: r.raw, Status: StatusOK}
	case <-ctx.Done():
		return Response{Errors: ctx.Err().Error(), Status: StatusError}
	}
}

// CommandTransport runs the system whois utility
type CommandTransport struct {
	path string
}

// NewCommandTransport resolves the whois binary. A missing binary is a
// configuration error.
func NewCommandTransport(name string) (*CommandTransport, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: whois command: %v", config.ErrInvalid, err)
	}
	return &CommandTransport{path: path}, nil
}

// Call runs `whois <domain>` and captures stdout, stderr and the exit status
func (t *CommandTransport) Call(ctx context.Context, domain string) Response {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, domain)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	resp := Response{Output: stdout.String(), Errors: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		resp.Status = StatusOK
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		resp.Status = exitErr.ExitCode()
	default:
		// killed, timed out or never started
		resp.Status = StatusError
		resp.Errors = strings.TrimSpace(resp.Errors + "\n" + err.Error())
	}
	return resp
}
