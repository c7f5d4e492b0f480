// Package transport implements the deadline-bounded synchronous TCP
// wrapper of §4.1. Connect, ReadExact and WriteAll can fail with
// TimedOut (Cancel, Close, IsOpen and SetLowLatency never fail), and
// ReadExact/WriteAll/Connect are serialized through an internal mutex so
// no two of *those* ever run concurrently on the same Client (the
// "single strand" guarantee of §4.1/§5). Cancel and Close are
// deliberately NOT serialized behind that mutex — they only ever touch
// the connection handle itself, never block on socket IO, and must be
// callable while a ReadExact/WriteAll is in flight in order to preempt
// it (§4.1's cancel() contract).
//
// See DESIGN.md's "Open Question decisions" for why this is built
// directly on net.Conn's deadline support instead of reimplementing an
// async-op-vs-timer race: net.Conn already gives exactly that blocking
// façade, and SetDeadline(time.Now()) already gives safe cancellation of
// an in-flight call — it's the same trick the teacher's own
// internal/writer/ingest/client.go uses for its one-shot sends. The
// cancellation path only works because setting a conn's deadline is
// documented safe to call concurrently with a blocked read or write on
// that same conn, so the handle must be reachable without waiting for
// the blocked call to release a lock.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config carries the two timeout knobs §4.1 calls out separately.
type Config struct {
	// DefaultTimeout bounds read_exact/write_all calls that don't specify
	// their own timeout.
	DefaultTimeout time.Duration
	// ConnectTimeout bounds connect/connect_many.
	ConnectTimeout time.Duration
}

func (c Config) sanitized() Config {
	if c.DefaultTimeout < 0 {
		c.DefaultTimeout = 0
	}
	if c.ConnectTimeout < 0 {
		c.ConnectTimeout = 0
	}
	return c
}

// Client wraps one TCP connection with deadline-bounded operations.
type Client struct {
	cfg Config

	// opMu serializes ReadExact/WriteAll/Connect against each other.
	// It is never held across Cancel/Close — see package doc.
	opMu sync.Mutex

	// connMu guards conn/closed. Critical sections under connMu are
	// always short (a field read or a field write), never a blocking
	// socket operation.
	connMu sync.Mutex
	conn   net.Conn
	closed bool

	// cancelled records whether the most recent Cancel() call landed
	// during the operation now classifying its error, so a resulting
	// deadline-exceeded error can be reported as Cancelled rather than
	// TimedOut. Reset at the start of every ReadExact/WriteAll.
	cancelled atomic.Bool
}

// New creates a Client with no connection yet.
func New(cfg Config) *Client {
	return &Client{cfg: cfg.sanitized()}
}

// Endpoint is one dial target for ConnectMany.
type Endpoint struct {
	IP   net.IP
	Port int
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), fmt.Sprintf("%d", e.Port))
}

// Connect dials a single endpoint, closing any prior connection first.
// A zero timeout falls back to cfg.ConnectTimeout.
func (c *Client) Connect(ep Endpoint, timeout time.Duration) error {
	return c.ConnectMany([]Endpoint{ep}, timeout)
}

// ConnectMany dials each endpoint in order, returning on the first
// success. If all fail, the last error is returned (initial sentinel
// behavior matches §4.1: "last error", starting from ErrNoEndpoints if
// the list is empty).
func (c *Client) ConnectMany(eps []Endpoint, timeout time.Duration) error {
	if len(eps) == 0 {
		return ErrNoEndpoints
	}
	if timeout <= 0 {
		timeout = c.cfg.ConnectTimeout
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.shutdownCurrent()

	var lastErr error = ErrNoEndpoints
	for _, ep := range eps {
		conn, err := net.DialTimeout("tcp", ep.String(), timeout)
		if err != nil {
			lastErr = classifyDialError(err)
			continue
		}
		c.setConn(conn)
		setLowLatency(conn)
		return nil
	}
	return lastErr
}

func classifyDialError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	if isConnRefused(err) {
		return fmt.Errorf("%w: %v", ErrConnectRefused, err)
	}
	return err
}

// SetLowLatency enables TCP_NODELAY and keepalive on the current
// connection (§4.1). No-op if not connected.
func (c *Client) SetLowLatency() {
	conn, open := c.snapshotConn()
	if !open {
		return
	}
	setLowLatency(conn)
}

func setLowLatency(conn net.Conn) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcpConn.SetNoDelay(true)
	_ = tcpConn.SetKeepAlive(true)
}

// ReadExact reads exactly len(dst) bytes, or fails with ErrTimedOut (or
// ErrCancelled, if a concurrent Cancel() caused it) if the deadline
// elapses first. On timeout, whatever bytes had already landed in dst
// remain there for diagnostics, and the connection is left in an
// indeterminate state — per §4.1, a timed-out operation is fatal for the
// current session.
func (c *Client) ReadExact(dst []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = c.cfg.DefaultTimeout
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	conn, open := c.snapshotConn()
	if !open {
		return 0, ErrNotOpen
	}

	c.cancelled.Store(false)
	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}
	defer conn.SetReadDeadline(time.Time{})

	n, err := io.ReadFull(conn, dst)
	if err != nil {
		return n, c.classifyIOError(err)
	}
	return n, nil
}

// WriteAll writes every byte of src, or fails with ErrTimedOut (or
// ErrCancelled) if the deadline elapses first.
func (c *Client) WriteAll(src []byte, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.cfg.DefaultTimeout
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	conn, open := c.snapshotConn()
	if !open {
		return ErrNotOpen
	}

	c.cancelled.Store(false)
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	defer conn.SetWriteDeadline(time.Time{})

	_, err := writeAll(conn, src)
	if err != nil {
		return c.classifyIOError(err)
	}
	return nil
}

func writeAll(w io.Writer, b []byte) (int, error) {
	total := 0
	for len(b) > 0 {
		n, err := w.Write(b)
		total += n
		if err != nil {
			return total, err
		}
		b = b[n:]
	}
	return total, nil
}

// Cancel aborts any in-flight ReadExact/WriteAll by forcing an immediate
// deadline on the live connection. It does not wait for opMu, so it can
// preempt an operation that is still blocked in io.ReadFull/Write — that
// is the entire point (§4.1's cancel() contract, and what device.Stop()
// relies on to interrupt the worker promptly).
func (c *Client) Cancel() {
	conn, open := c.snapshotConn()
	if !open {
		return
	}
	c.cancelled.Store(true)
	_ = conn.SetDeadline(time.Now())
}

// Close is idempotent and, like Cancel, does not wait for opMu: it marks
// the connection closed and shuts it down immediately, which unblocks
// any in-flight ReadExact/WriteAll with ErrConnectionClosed rather than
// leaving them to wait out a timeout. It never fails observably (§4.1).
func (c *Client) Close() {
	c.shutdownCurrent()
}

func (c *Client) shutdownCurrent() {
	conn := c.markClosed()
	if conn == nil {
		return
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.CloseRead()
		_ = tcpConn.CloseWrite()
	}
	_ = conn.Close()
}

// snapshotConn returns the current connection and whether it is open.
func (c *Client) snapshotConn() (net.Conn, bool) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn, c.conn != nil && !c.closed
}

func (c *Client) setConn(conn net.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.closed = false
	c.connMu.Unlock()
}

// markClosed flips closed and returns the connection that was live, or
// nil if there was nothing to close.
func (c *Client) markClosed() net.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil || c.closed {
		return nil
	}
	conn := c.conn
	c.closed = true
	return conn
}

// IsOpen reports whether a connection is currently established.
func (c *Client) IsOpen() bool {
	_, open := c.snapshotConn()
	return open
}

func (c *Client) classifyIOError(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		if c.cancelled.Load() {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	return err
}

func isConnRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" && isRefusedSyscallErr(opErr.Err)
	}
	return false
}
