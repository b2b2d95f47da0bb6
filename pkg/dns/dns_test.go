package dns

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/logger"
)

// startServer runs an in-process DNS server that knows one delegated zone
func startServer(t *testing.T, zone string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]
		soa := &dns.SOA{
			Hdr:     dns.RR_Header{Name: "cz.", Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 300},
			Ns:      "a.ns.nic.cz.",
			Mbox:    "hostmaster.nic.cz.",
			Serial:  1,
			Refresh: 900,
			Retry:   300,
			Expire:  604800,
			Minttl:  900,
		}
		if dns.CanonicalName(q.Name) == dns.CanonicalName(zone) {
			soa.Hdr.Name = q.Name
			m.Answer = append(m.Answer, soa)
		} else {
			m.Rcode = dns.RcodeNameError
			m.Ns = append(m.Ns, soa)
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func newChecker(t *testing.T, nameserver string) *Checker {
	t.Helper()
	log := logger.New()
	cfg := config.New(log)
	cfg.Timeout = 2 * time.Second
	cfg.Nameserver = nameserver
	return New(cfg, log)
}

func TestIsRegistered(t *testing.T) {
	addr := startServer(t, "seznam.cz")
	checker := newChecker(t, addr)

	tests := []struct {
		domain string
		want   bool
	}{
		{"seznam.cz", true},
		{"SEZNAM.cz.", true},
		{"caferene.cz", false},
	}

	for _, tc := range tests {
		got, err := checker.IsRegistered(context.Background(), tc.domain)
		if err != nil {
			t.Fatalf("IsRegistered(%q) returned error: %v", tc.domain, err)
		}
		if got != tc.want {
			t.Errorf("IsRegistered(%q) = %v, want %v", tc.domain, got, tc.want)
		}
	}
}

func TestIsRegistered_Unreachable(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := pc.LocalAddr().String()
	// The socket stays open but never answers.
	defer pc.Close()

	checker := newChecker(t, addr)
	checker.cfg.Timeout = 200 * time.Millisecond
	checker.client.Timeout = 200 * time.Millisecond

	if _, err := checker.IsRegistered(context.Background(), "seznam.cz"); err == nil {
		t.Errorf("IsRegistered() did not return error for a silent server")
	}
}

func TestHasSOA(t *testing.T) {
	withSOA := new(dns.Msg)
	withSOA.Answer = append(withSOA.Answer, &dns.SOA{Hdr: dns.RR_Header{Name: "example.cz.", Rrtype: dns.TypeSOA}})

	parentSOA := new(dns.Msg)
	parentSOA.Answer = append(parentSOA.Answer, &dns.SOA{Hdr: dns.RR_Header{Name: "cz.", Rrtype: dns.TypeSOA}})

	nxdomain := new(dns.Msg)
	nxdomain.Rcode = dns.RcodeNameError
	nxdomain.Ns = append(nxdomain.Ns, &dns.SOA{Hdr: dns.RR_Header{Name: "cz.", Rrtype: dns.TypeSOA}})

	tests := []struct {
		name string
		msg  *dns.Msg
		want bool
	}{
		{"own soa", withSOA, true},
		{"parent soa in answer", parentSOA, false},
		{"nxdomain", nxdomain, false},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		if got := hasSOA(tc.msg, "example.cz"); got != tc.want {
			t.Errorf("hasSOA(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNameserver(t *testing.T) {
	checker := newChecker(t, "")

	// Depends on the system's resolv.conf; only check that we get host:port.
	server, err := checker.nameserver()
	if err != nil {
		t.Errorf("nameserver() returned error: %v", err)
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		t.Errorf("nameserver() = %q, not host:port: %v", server, err)
	}

	checker.cfg.Nameserver = "192.0.2.1"
	if server, _ := checker.nameserver(); server != "192.0.2.1:53" {
		t.Errorf("nameserver() = %q, want 192.0.2.1:53", server)
	}
}
