// Package epp implements the registry client: a session-managing EPP
// (RFC 5730-5734) protocol client with typed operations for domains,
// contacts, and hosts.
//
// One Client owns one long-lived authenticated registry session. The session
// is established lazily on the first command and reused; a mutex serializes
// concurrent callers onto the single connection, since EPP allows one
// in-flight command per session. Transport failures tear the session down so
// the next command reconnects.
package epp

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"registrar/internal/platform/config"
)

// Service URIs announced at login.
var loginObjURIs = []string{nsDomain, nsContact, nsHost}

// Client is the registry protocol client. Construct once at process start
// and inject into the state machines; substitute a fake implementation of
// the consumer-side interfaces in tests.
type Client struct {
	cfg     config.EPPConfig
	dial    Dialer
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu   sync.Mutex // serializes command round trips on the shared session
	conn net.Conn
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer used to span each registry round trip.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New creates a registry client. The session is not established until the
// first command (or an explicit Connect).
func New(cfg config.EPPConfig, dial Dialer, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		dial: dial,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("registrar/epp")
	}
	return c
}

// Connect establishes and authenticates the session eagerly. Optional;
// commands connect lazily.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureSessionLocked(ctx)
}

// Close logs out and tears down the session. Safe to call when disconnected.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	// Best-effort logout; the connection is going away either way.
	if payload, err := marshalCommand(&command{Logout: &struct{}{}, ClTRID: newTRID()}); err == nil {
		_ = c.conn.SetDeadline(c.deadline(ctx))
		if err := writeFrame(c.conn, payload); err == nil {
			_, _ = readFrame(c.conn)
		}
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) ensureSessionLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		c.metrics.observeConnectionError()
		return &ConnectionError{Op: "dial", Err: err}
	}

	_ = conn.SetDeadline(c.deadline(ctx))

	// The server speaks first with a greeting.
	raw, err := readFrame(conn)
	if err != nil {
		conn.Close()
		c.metrics.observeConnectionError()
		return &ConnectionError{Op: "greeting", Err: err}
	}
	msg, err := unmarshalMessage(raw)
	if err != nil || msg.Greeting == nil {
		conn.Close()
		c.metrics.observeConnectionError()
		return &ConnectionError{Op: "greeting", Err: err}
	}

	login := &command{
		Login: &loginCmd{
			ClientID: c.cfg.LoginID,
			Password: c.cfg.LoginPassword,
			Options:  loginOptions{Version: "1.0", Lang: "en"},
			Services: loginSvcs{ObjURIs: loginObjURIs},
		},
		ClTRID: newTRID(),
	}
	resp, err := c.roundTrip(conn, ctx, login)
	if err != nil {
		conn.Close()
		c.metrics.observeConnectionError()
		return &ConnectionError{Op: "login", Err: err}
	}
	if code := resp.code(); !success(code) {
		conn.Close()
		c.metrics.observeConnectionError()
		return &ConnectionError{Op: "login", Err: &RegistryError{Code: code, Note: resp.Results[0].note()}}
	}

	c.conn = conn
	c.metrics.observeLogin()
	c.logger.Info("registry session established", "server", msg.Greeting.ServerID)
	return nil
}

// command sends one EPP command on the shared session and returns the
// response. Transport failures drop the session and come back as
// ConnectionError; non-success result codes come back as RegistryError.
func (c *Client) command(ctx context.Context, verb string, cmd *command) (*response, error) {
	ctx, span := c.tracer.Start(ctx, "epp."+verb)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSessionLocked(ctx); err != nil {
		return nil, err
	}

	cmd.ClTRID = newTRID()
	resp, err := c.roundTrip(c.conn, ctx, cmd)
	if err != nil {
		// Unknown registry-side outcome; drop the session so the next
		// command starts clean, and let the caller reconcile via info.
		c.conn.Close()
		c.conn = nil
		c.metrics.observeConnectionError()
		span.SetAttributes(attribute.String("epp.error", err.Error()))
		return nil, &ConnectionError{Op: verb, Err: err}
	}

	code := resp.code()
	c.metrics.observeCommand(verb, code)
	span.SetAttributes(attribute.Int("epp.result_code", code))

	if !success(code) {
		return resp, &RegistryError{Code: code, Note: resp.Results[0].note()}
	}
	return resp, nil
}

func (c *Client) roundTrip(conn net.Conn, ctx context.Context, cmd *command) (*response, error) {
	payload, err := marshalCommand(cmd)
	if err != nil {
		return nil, err
	}

	_ = conn.SetDeadline(c.deadline(ctx))
	if err := writeFrame(conn, payload); err != nil {
		return nil, err
	}
	raw, err := readFrame(conn)
	if err != nil {
		return nil, err
	}
	msg, err := unmarshalMessage(raw)
	if err != nil {
		return nil, err
	}
	if msg.Response == nil || len(msg.Response.Results) == 0 {
		return nil, errMalformedResponse
	}
	return msg.Response, nil
}

// deadline bounds every round trip: the configured command timeout, tightened
// by the context deadline when one is set. A hung registry therefore surfaces
// as a ConnectionError instead of blocking the caller indefinitely.
func (c *Client) deadline(ctx context.Context) time.Time {
	timeout := c.cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		d = ctxDeadline
	}
	return d
}

func (r *response) code() int {
	if len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].Code
}

func newTRID() string {
	return "registrar-" + uuid.NewString()
}
