package epp

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"registrar/internal/platform/config"
)

// maxFrame bounds inbound message size. Registry responses are small; a
// larger header means a corrupt stream.
const maxFrame = 1 << 20

// Dialer establishes the raw transport to the registry. The production
// dialer speaks TLS with client-certificate auth; tests substitute an
// in-memory pipe.
type Dialer func(ctx context.Context) (net.Conn, error)

// NewTLSDialer builds the production dialer from EPP config.
func NewTLSDialer(cfg config.EPPConfig) (Dialer, error) {
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load epp client certificate: %w", err)
	}
	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	return func(ctx context.Context) (net.Conn, error) {
		d := &tls.Dialer{Config: tlsCfg}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}, nil
}

// writeFrame writes one EPP message with the RFC 5734 total-length header
// (four bytes, big endian, length inclusive of the header itself).
func writeFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)+4))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads one length-prefixed EPP message.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	total := binary.BigEndian.Uint32(hdr[:])
	if total < 4 || total > maxFrame {
		return nil, fmt.Errorf("invalid epp frame length %d", total)
	}
	payload := make([]byte, total-4)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
