// Package dnscheck verifies that a domain's delegated nameservers actually
// answer for it. A domain is only marked ready when enough of its declared
// nameservers respond authoritatively, so a typo'd delegation is caught
// before the state machine records the domain as resolving.
package dnscheck

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"

	"registrar/internal/domains/models"
	"registrar/pkg/derrors"
)

// MinWorkingNameservers is the smallest responsive set accepted for a
// delegation to count as working.
const MinWorkingNameservers = 2

// Exchanger sends one DNS query to one server. *dns.Client satisfies it.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

// Checker probes nameservers over plain DNS.
type Checker struct {
	exchange Exchanger
	logger   *slog.Logger
}

// Option configures the Checker.
type Option func(*Checker)

func WithExchanger(e Exchanger) Option {
	return func(c *Checker) { c.exchange = e }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) { c.logger = logger }
}

func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	if c.exchange == nil {
		c.exchange = &dns.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Result reports the outcome of probing one nameserver.
type Result struct {
	Host    string `json:"host"`
	Working bool   `json:"working"`
	Detail  string `json:"detail,omitempty"`
}

// Verify probes every host in parallel and returns per-host results plus an
// error when fewer than MinWorkingNameservers answered authoritatively.
// The SOA of the domain itself is queried; any authoritative answer counts.
func (c *Checker) Verify(ctx context.Context, domainName string, hosts []models.Host) ([]Result, error) {
	if len(hosts) < MinWorkingNameservers {
		return nil, derrors.Newf(derrors.CodeInvalidInput,
			"at least %d nameservers are required, got %d", MinWorkingNameservers, len(hosts))
	}

	results := make([]Result, len(hosts))
	var wg sync.WaitGroup
	for i, h := range hosts {
		wg.Add(1)
		go func(i int, h models.Host) {
			defer wg.Done()
			results[i] = c.probe(ctx, domainName, h)
		}(i, h)
	}
	wg.Wait()

	working := 0
	for _, r := range results {
		if r.Working {
			working++
		}
	}
	if working < MinWorkingNameservers {
		return results, derrors.Newf(derrors.CodeInvariantViolation,
			"only %d of %d nameservers answer for %s", working, len(hosts), domainName)
	}
	return results, nil
}

func (c *Checker) probe(ctx context.Context, domainName string, host models.Host) Result {
	addr := host.Name
	// Glue hosts are probed at their declared address; the host name may
	// not resolve until the delegation it is part of works.
	if host.IsGlue(domainName) && len(host.IPs) > 0 {
		addr = host.IPs[0]
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domainName), dns.TypeSOA)
	m.RecursionDesired = false

	r, _, err := c.exchange.ExchangeContext(ctx, m, net.JoinHostPort(addr, "53"))
	if err != nil {
		c.logger.Debug("nameserver probe failed",
			"domain", domainName, "host", host.Name, "error", err)
		return Result{Host: host.Name, Detail: err.Error()}
	}
	if r.Rcode != dns.RcodeSuccess {
		return Result{Host: host.Name, Detail: dns.RcodeToString[r.Rcode]}
	}
	if !r.Authoritative {
		return Result{Host: host.Name, Detail: "answer not authoritative"}
	}
	return Result{Host: host.Name, Working: true}
}
