// Package device implements the Ether Dream driver: the composition of
// the protocol driver, playback state machine, refill scheduler, and
// deadline transport into one streaming control loop (§2).
package device

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/etherdream/internal/logx"
	"github.com/tamzrod/etherdream/internal/playback"
	"github.com/tamzrod/etherdream/internal/protocol"
	"github.com/tamzrod/etherdream/internal/transport"
)

// DefaultPort is the Ether Dream DAC's well-known TCP port (§6.1/§6.2).
const DefaultPort = 7765

// Device is the public handle to one Ether Dream DAC connection. Its
// methods split into "owner thread" calls (Connect/Close/SetLatency/
// SetRequestPointsCallback/Start/Stop — §5) and the internal worker
// goroutine launched by Start, which is the only place status, flags,
// and pointsToSend are mutated.
type Device struct {
	base

	tr *transport.Client

	mu               sync.Mutex // guards rememberedEndpoint + lastError (owner<->worker boundary)
	rememberedEndpoint *transport.Endpoint
	lastError        error

	logger logx.Logger

	pendingRate atomic.Uint32 // 0 = none; set by QueuePointRate, drained by run()

	// worker-exclusive state (§3 DeviceState); touched only inside run().
	status            protocol.PlaybackStatus
	flags             playback.Flags
	lastReceiveTime   time.Time
	currentPointIndex uint64
	cmd               protocol.Command
}

// New constructs a Device. No IO happens here (§6.2).
func New() *Device {
	d := &Device{
		tr:     transport.New(transportConfig(defaultLatencyMs)),
		logger: logx.Default(),
	}
	d.base.init()
	return d
}

// SetLogger replaces this device's logger (§6.4 is process-wide by
// default via logx.SetDefault, but a per-device override is also useful
// and costs nothing extra).
func (d *Device) SetLogger(l logx.Logger) {
	if l == nil {
		l = logx.NewStdLogger()
	}
	d.logger = l
}

func transportConfig(latencyMs int64) transport.Config {
	return transport.Config{
		DefaultTimeout: time.Duration(latencyMs) * time.Millisecond,
		ConnectTimeout: 4 * time.Duration(latencyMs) * time.Millisecond,
	}
}

// Connect dials the DAC at ip:port (default port 7765, §6.1/§6.2).
func (d *Device) Connect(ip net.IP, port int) error {
	if port == 0 {
		port = DefaultPort
	}
	ep := transport.Endpoint{IP: ip, Port: port}

	timeout := time.Duration(4*d.GetLatency()) * time.Millisecond
	if err := d.tr.Connect(ep, timeout); err != nil {
		return err
	}
	d.tr.SetLowLatency()

	d.mu.Lock()
	d.rememberedEndpoint = &ep
	d.lastError = nil
	d.mu.Unlock()

	d.logger.Info(fmt.Sprintf("connected to %s", ep.String()))
	return nil
}

// ConnectHost parses host as a literal IPv4/IPv6 address and connects to
// it. DNS resolution is explicitly out of scope (§1 Non-goals) — a
// non-literal host is an error, not a lookup.
func (d *Device) ConnectHost(host string, port int) error {
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("device: %q is not a literal IPv4/IPv6 address", host)
	}
	return d.Connect(ip, port)
}

// Close is idempotent; clears the remembered address (§6.2).
func (d *Device) Close() {
	d.tr.Close()
	d.mu.Lock()
	d.rememberedEndpoint = nil
	d.mu.Unlock()
}

// IsConnected reports whether the transport currently holds an open
// socket.
func (d *Device) IsConnected() bool {
	return d.tr.IsOpen()
}

// LastNetworkError returns the last failure recorded by the worker,
// readable by the owner after Stop() returns (§7).
func (d *Device) LastNetworkError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastError
}

func (d *Device) setLastError(err error) {
	d.mu.Lock()
	d.lastError = err
	d.mu.Unlock()
}

// Start launches the worker goroutine; a no-op if already running (§6.2).
func (d *Device) Start() {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run()
	}()
}

// Stop clears running and joins the worker (§5, §6.2).
func (d *Device) Stop() {
	d.running.Store(false)
	d.tr.Cancel()
	d.wg.Wait()
}
