package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

func dialEndpoint(t *testing.T, ln net.Listener) Endpoint {
	t.Helper()
	addr := ln.Addr().(*net.TCPAddr)
	return Endpoint{IP: addr.IP, Port: addr.Port}
}

// property 9: read_exact(N, T) against a peer that never writes fails
// with TimedOut within [T, T+delta].
func TestReadExact_TimesOutWithinBound(t *testing.T) {
	ln := listen(t)
	accepted := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			<-accepted
			conn.Close()
		}
	}()

	c := New(Config{DefaultTimeout: 2 * time.Second, ConnectTimeout: time.Second})
	require.NoError(t, c.Connect(dialEndpoint(t, ln), time.Second))

	timeout := 50 * time.Millisecond
	start := time.Now()
	buf := make([]byte, 22)
	_, err := c.ReadExact(buf, timeout)
	elapsed := time.Since(start)
	close(accepted)

	require.ErrorIs(t, err, ErrTimedOut)
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Less(t, elapsed, timeout+500*time.Millisecond)
}

func TestWriteAllThenReadExact_RoundTrip(t *testing.T) {
	ln := listen(t)
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		_, _ = conn.Write([]byte{0xde, 0xad, 0xbe, 0xef})
	}()

	c := New(Config{DefaultTimeout: time.Second, ConnectTimeout: time.Second})
	require.NoError(t, c.Connect(dialEndpoint(t, ln), time.Second))

	require.NoError(t, c.WriteAll([]byte{1, 2, 3, 4}, time.Second))

	reply := make([]byte, 4)
	n, err := c.ReadExact(reply, time.Second)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, reply)

	<-serverDone
}

func TestConnect_RefusedWhenNothingListening(t *testing.T) {
	ln := listen(t)
	ep := dialEndpoint(t, ln)
	require.NoError(t, ln.Close())

	c := New(Config{ConnectTimeout: time.Second})
	err := c.Connect(ep, 200*time.Millisecond)
	require.Error(t, err)
}

// property 10 (reframed for the deadline-based design): cancelling an
// in-flight read leaves the client safe to close, and a closed client
// reports not open.
func TestCancel_UnblocksInFlightReadSafely(t *testing.T) {
	ln := listen(t)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			time.Sleep(2 * time.Second)
			conn.Close()
		}
	}()

	c := New(Config{DefaultTimeout: 5 * time.Second, ConnectTimeout: time.Second})
	require.NoError(t, c.Connect(dialEndpoint(t, ln), time.Second))

	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, 22)
		_, err := c.ReadExact(buf, 5*time.Second)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c.Cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("cancel did not unblock in-flight read")
	}

	c.Close()
	require.False(t, c.IsOpen())
	c.Close() // idempotent
}

// S7 (scaled down from 3000 for test runtime): repeated connect/close
// cycles against the same listener leave no leaked state behind.
func TestRepeatedConnectClose_NoLeak(t *testing.T) {
	ln := listen(t)
	accepted := make(chan net.Conn, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			select {
			case accepted <- conn:
			default:
				conn.Close()
			}
		}
	}()

	const iterations = 200
	c := New(Config{ConnectTimeout: time.Second})
	ep := dialEndpoint(t, ln)

	for i := 0; i < iterations; i++ {
		require.NoError(t, c.Connect(ep, time.Second))
		require.True(t, c.IsOpen())
		c.Close()
		require.False(t, c.IsOpen())
		select {
		case conn := <-accepted:
			conn.Close()
		case <-time.After(time.Second):
			t.Fatalf("iteration %d: server never observed the accept", i)
		}
	}
}

func TestReadExact_NotOpen(t *testing.T) {
	c := New(Config{})
	buf := make([]byte, 4)
	_, err := c.ReadExact(buf, time.Second)
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestWriteAll_NotOpen(t *testing.T) {
	c := New(Config{})
	err := c.WriteAll([]byte{1}, time.Second)
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestConnectMany_NoEndpoints(t *testing.T) {
	c := New(Config{})
	err := c.ConnectMany(nil, time.Second)
	require.ErrorIs(t, err, ErrNoEndpoints)
}
