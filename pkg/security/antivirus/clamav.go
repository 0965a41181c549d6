package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	// clamd rejects streams above StreamMaxLength (25MB by default)
	maxChunk = 1 << 20
)

// ClamAV talks to a clamd daemon over TCP ("host:3310") or a unix socket path.
type ClamAV struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ClamAV{address: address, timeout: timeout}
}

func (c *ClamAV) Name() string { return "clamav" }

func (c *ClamAV) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (c *ClamAV) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	conn, err := c.dialer.DialContext(ctx, c.network(), c.address)
	if err != nil {
		return nil, fmt.Errorf("clamd dial: %w", err)
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping sends the null-terminated PING command and expects PONG.
func (c *ClamAV) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("clamd ping: %w", err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("clamd ping: unexpected reply %q", reply)
	}
	return nil
}

// Scan streams data with INSTREAM. Any transport or daemon error counts as infected.
func (c *ClamAV) Scan(ctx context.Context, data []byte) Verdict {
	v := Verdict{Scanner: c.Name()}
	fail := func(err error) Verdict {
		v.Infected = true
		v.Err = err
		return v
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return fail(fmt.Errorf("clamd instream: %w", err))
	}
	var size [4]byte
	for len(data) > 0 {
		n := len(data)
		if n > maxChunk {
			n = maxChunk
		}
		binary.BigEndian.PutUint32(size[:], uint32(n))
		if _, err := w.Write(size[:]); err != nil {
			return fail(fmt.Errorf("clamd instream: %w", err))
		}
		if _, err := w.Write(data[:n]); err != nil {
			return fail(fmt.Errorf("clamd instream: %w", err))
		}
		data = data[n:]
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return fail(fmt.Errorf("clamd instream: %w", err))
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("clamd instream: %w", err))
	}

	reply, err := readReply(conn)
	if err != nil {
		return fail(err)
	}
	return parseReply(v, reply)
}

// parseReply handles "stream: OK", "stream: <name> FOUND" and "<msg> ERROR".
func parseReply(v Verdict, reply string) Verdict {
	body := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		body = strings.TrimSpace(reply[i+1:])
	}
	switch {
	case body == "OK":
	case strings.HasSuffix(body, " FOUND"):
		v.Infected = true
		v.Threat = strings.TrimSuffix(body, " FOUND")
	case strings.HasSuffix(body, "ERROR"):
		v.Infected = true
		v.Err = fmt.Errorf("clamd: %s", body)
	default:
		v.Infected = true
		v.Err = fmt.Errorf("clamd: unexpected reply %q", reply)
	}
	return v
}

func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("clamd read: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}
