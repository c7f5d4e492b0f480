package device

import (
	"fmt"
	"time"

	"github.com/tamzrod/etherdream/internal/playback"
	"github.com/tamzrod/etherdream/internal/protocol"
	"github.com/tamzrod/etherdream/internal/scheduler"
)

// QueuePointRate requests a point-rate change, sent as a 'q' command at
// the top of the next iteration (§4.2/§4.3 rule 4 — see SPEC_FULL.md's
// supplement on why this exists). rate must be > 0; a zero rate is
// ignored.
func (d *Device) QueuePointRate(rate uint32) {
	if rate == 0 {
		return
	}
	d.pendingRate.Store(rate)
}

// run is the worker loop (§4.5). It is launched by Start and runs until
// running is cleared or a fatal error occurs, at which point it records
// lastError, closes the transport, and returns.
func (d *Device) run() {
	defer func() {
		d.running.Store(false)
		d.tr.Close()
	}()

	if !d.tr.IsOpen() {
		d.logger.Error("run: not connected")
		return
	}

	if err := d.bootstrap(); err != nil {
		d.fail(err)
		return
	}

	for d.running.Load() {
		if rate := d.pendingRate.Swap(0); rate != 0 {
			if err := d.sendAwaitAck(func() { d.cmd.SetQueueRate(rate) }); err != nil {
				d.fail(err)
				return
			}
		}

		if d.flags.ClearRequired {
			if err := d.sendAwaitAck(func() { d.cmd.SetClear() }); err != nil {
				d.fail(err)
				return
			}
		}

		if d.flags.PrepareRequired {
			if err := d.sendAwaitAck(func() { d.cmd.SetPrepare() }); err != nil {
				d.fail(err)
				return
			}
		}

		sleepFor := scheduler.ComputeSleepDurationMS(
			d.GetLatency(), d.status.PointRate, d.status.BufferFullness, d.lastReceiveTime, time.Now(),
		)
		if sleepFor > 0 {
			time.Sleep(sleepFor)
		}

		if err := d.refillAndSend(); err != nil {
			d.fail(err)
			return
		}

		if d.flags.BeginRequired {
			if err := d.sendAwaitAck(func() { d.cmd.SetBegin(scheduler.TargetPointRate) }); err != nil {
				d.fail(err)
				return
			}
		}

		if !d.running.Load() {
			return
		}
	}
}

// bootstrap implements the "read first, fall back to ping" behavior of
// §4.5/§9: the DAC greets a fresh connection with an unsolicited 22-byte
// status frame whose command is '?'. If that read times out or the frame
// fails validation, fall back to sending '?' explicitly.
func (d *Device) bootstrap() error {
	timeout := d.bootstrapTimeout()

	buf := make([]byte, protocol.AckSize)
	if _, err := d.tr.ReadExact(buf, timeout); err == nil {
		if ack, decErr := protocol.DecodeAck(buf); decErr == nil && ack.Response == protocol.ResponseOK {
			d.applyAck(ack, true)
			return nil
		}
	} else if !d.running.Load() {
		// Stop() cancelled this read out from under us; don't block a
		// second time on the fallback ping, just unwind.
		return err
	}

	// Fallback: send '?' and wait for its ACK. A failure here is fatal
	// for this session (§4.5).
	return d.sendAwaitAck(func() { d.cmd.SetPing() })
}

func (d *Device) bootstrapTimeout() time.Duration {
	return time.Duration(d.GetLatency()) * time.Millisecond
}

// sendAwaitAck stages a frame via build, writes it, reads the reply, and
// folds it into the status/flags (§4.5: "a command is never issued
// before the previous ACK has been decoded; no pipelining").
func (d *Device) sendAwaitAck(build func()) error {
	build()
	return d.flushStagedAwaitAck()
}

func (d *Device) flushStagedAwaitAck() error {
	timeout := time.Duration(d.GetLatency()) * time.Millisecond
	opcode := d.cmd.Opcode()

	if err := d.tr.WriteAll(d.cmd.Bytes(), timeout); err != nil {
		d.cmd.Reset()
		return err
	}
	d.cmd.Reset()

	buf := make([]byte, protocol.AckSize)
	if _, err := d.tr.ReadExact(buf, timeout); err != nil {
		return err
	}

	ack, err := protocol.DecodeAck(buf)
	if err != nil {
		return err
	}

	d.applyAck(ack, ack.Acked(opcode))
	return nil
}

// applyAck folds a freshly decoded ACK into worker-exclusive state:
// refresh the status snapshot, re-evaluate the playback state machine
// (§4.3), and stamp lastReceiveTime (§4.5).
func (d *Device) applyAck(ack protocol.AckFrame, commandAcked bool) {
	d.status = ack.Status
	d.flags = playback.Update(ack.Status, commandAcked, d.flags.RateChangePending)
	d.lastReceiveTime = time.Now()

	if ack.Command == protocol.OpQueue && commandAcked {
		d.flags.RateChangePending = true
	}
}

// refillAndSend implements §4.5 step 4: build a PointFillRequest, and if
// it calls for at least MinPacketPoints, invoke the callback and ship a
// 'd' frame.
func (d *Device) refillAndSend() error {
	now := time.Now()
	freq := scheduler.GetFillRequest(d.status.BufferFullness, d.status.PointRate, d.GetLatency(), d.lastReceiveTime, now)

	if freq.MinimumPointsRequired < scheduler.MinPacketPoints {
		return nil
	}

	req := PointFillRequest{
		MinimumPointsRequired:         freq.MinimumPointsRequired,
		MaximumPointsRequired:         freq.MaximumPointsRequired,
		EstimatedFirstPointRenderTime: now.Add(time.Duration(d.GetLatency()) * time.Millisecond),
		CurrentPointIndex:             d.currentPointIndex,
	}

	got, err := d.requestPoints(req)
	if err != nil {
		return err
	}
	if !got || len(d.pointsToSend) == 0 {
		return nil
	}

	rateChange := d.flags.RateChangePending
	if err := d.cmd.SetData(d.pointsToSend, rateChange); err != nil {
		return err
	}
	if err := d.flushStagedAwaitAck(); err != nil {
		return err
	}

	sent := len(d.pointsToSend)
	d.currentPointIndex += uint64(sent)
	if rateChange {
		d.flags.RateChangePending = false
	}
	d.logger.Info(fmt.Sprintf("sent %d points (buffer~%d)", sent, d.status.BufferFullness))
	return nil
}

// fail records the error that ended this session (§7): lastError and a
// log line. If running was already cleared, Stop() raced us and
// cancelled the in-flight operation on purpose — that's recorded as
// ErrOperationCanceled (wrapping the underlying transport error) and
// logged at Info rather than Error, since it isn't a failure.
func (d *Device) fail(err error) {
	if !d.running.Load() {
		d.setLastError(fmt.Errorf("%w: %w", ErrOperationCanceled, err))
		d.logger.Info(fmt.Sprintf("run: stopped: %v", err))
		return
	}
	d.setLastError(err)
	d.logger.Error(fmt.Sprintf("run: %v", err))
}
