package dnscheck

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/domains/models"
	"registrar/pkg/derrors"
)

type fakeExchanger struct {
	mu      sync.Mutex
	answers map[string]*dns.Msg
	errs    map[string]error
	asked   []string
}

func (f *fakeExchanger) ExchangeContext(_ context.Context, _ *dns.Msg, addr string) (*dns.Msg, time.Duration, error) {
	host := strings.TrimSuffix(addr, ":53")
	f.mu.Lock()
	f.asked = append(f.asked, host)
	f.mu.Unlock()
	if err, ok := f.errs[host]; ok {
		return nil, 0, err
	}
	if msg, ok := f.answers[host]; ok {
		return msg, time.Millisecond, nil
	}
	return nil, 0, errors.New("no answer configured for " + host)
}

func authoritative() *dns.Msg {
	m := new(dns.Msg)
	m.Authoritative = true
	return m
}

func newChecker(ex Exchanger) *Checker {
	return New(
		WithExchanger(ex),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestVerifyAllWorking(t *testing.T) {
	ex := &fakeExchanger{answers: map[string]*dns.Msg{
		"ns1.outside.net": authoritative(),
		"ns2.outside.net": authoritative(),
	}}
	c := newChecker(ex)

	results, err := c.Verify(context.Background(), "city.gov", []models.Host{
		{Name: "ns1.outside.net"},
		{Name: "ns2.outside.net"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Working)
	assert.True(t, results[1].Working)
}

func TestVerifyTooFewWorking(t *testing.T) {
	refused := new(dns.Msg)
	refused.Rcode = dns.RcodeRefused

	ex := &fakeExchanger{answers: map[string]*dns.Msg{
		"ns1.outside.net": authoritative(),
		"ns2.outside.net": refused,
	}}
	c := newChecker(ex)

	results, err := c.Verify(context.Background(), "city.gov", []models.Host{
		{Name: "ns1.outside.net"},
		{Name: "ns2.outside.net"},
	})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvariantViolation))
	require.Len(t, results, 2)
	assert.True(t, results[0].Working)
	assert.False(t, results[1].Working)
	assert.Equal(t, "REFUSED", results[1].Detail)
}

func TestVerifyRejectsSingleNameserver(t *testing.T) {
	c := newChecker(&fakeExchanger{})

	_, err := c.Verify(context.Background(), "city.gov", []models.Host{
		{Name: "ns1.outside.net"},
	})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
}

func TestVerifyProbesGlueByAddress(t *testing.T) {
	ex := &fakeExchanger{answers: map[string]*dns.Msg{
		"192.0.2.10":      authoritative(),
		"ns2.outside.net": authoritative(),
	}}
	c := newChecker(ex)

	_, err := c.Verify(context.Background(), "city.gov", []models.Host{
		{Name: "ns1.city.gov", IPs: []string{"192.0.2.10"}},
		{Name: "ns2.outside.net"},
	})
	require.NoError(t, err)
	assert.Contains(t, ex.asked, "192.0.2.10")
}

func TestVerifyNonAuthoritativeDoesNotCount(t *testing.T) {
	recursive := new(dns.Msg)
	recursive.Authoritative = false

	ex := &fakeExchanger{answers: map[string]*dns.Msg{
		"ns1.outside.net": recursive,
		"ns2.outside.net": recursive,
	}}
	c := newChecker(ex)

	results, err := c.Verify(context.Background(), "city.gov", []models.Host{
		{Name: "ns1.outside.net"},
		{Name: "ns2.outside.net"},
	})
	require.Error(t, err)
	assert.Equal(t, "answer not authoritative", results[0].Detail)
}
