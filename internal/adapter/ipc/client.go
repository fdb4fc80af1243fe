// Package ipc reads framed watcher messages from a local socket.
//
// The upstream file-watcher frames each message as one JSON document per
// newline. The framing itself belongs to the watcher; this package only
// dials, splits lines, and decodes.
package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
)

// Dialer connects to a watcher socket address. An address containing a path
// separator is treated as a unix socket path, anything else as host:port.
type Dialer struct {
	Addr string
}

// Dial opens the socket and returns a message-oriented connection.
func (d *Dialer) Dial(ctx context.Context) (*Conn, error) {
	var nd net.Dialer
	c, err := nd.DialContext(ctx, networkFor(d.Addr), d.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial watcher %s: %w", d.Addr, err)
	}
	return NewConn(c), nil
}

func networkFor(addr string) string {
	if strings.ContainsRune(addr, '/') {
		return "unix"
	}
	return "tcp"
}

// Conn is a connected watcher socket delivering messages in arrival order.
type Conn struct {
	c net.Conn
	r *bufio.Reader
}

// NewConn wraps an established connection. Exposed for tests that pipe
// messages through net.Pipe.
func NewConn(c net.Conn) *Conn {
	return &Conn{c: c, r: bufio.NewReader(c)}
}

// Read blocks for the next message. A transport failure ends the stream; a
// line that fails to decode returns an error wrapping
// domain.ErrMalformedMessage and the stream continues.
func (c *Conn) Read() (domain.Message, error) {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return domain.Message{}, fmt.Errorf("read watcher socket: %w", err)
	}

	var msg domain.Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return msg, nil
}

// Close shuts the socket down, unblocking any pending Read.
func (c *Conn) Close() error {
	return c.c.Close()
}
