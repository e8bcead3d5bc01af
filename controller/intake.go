package controller

import (
	"sync/atomic"

	"can-datalogger/models"
	"can-datalogger/services/bus"
	"can-datalogger/utils"
)

// Intake bridges the controller's receive notification to the
// cooperative loop. Notify runs at notification priority and touches
// exactly one atomic flag; draining, history updates and forwarding to
// the session logger all happen inside Poll, on the loop.
type Intake struct {
	port    bus.Port
	history *models.FrameHistory
	logger  *SessionLogger
	clock   utils.Clock

	pending atomic.Bool
	rxCount atomic.Uint64
}

func NewIntake(port bus.Port, history *models.FrameHistory, logger *SessionLogger, clock utils.Clock) *Intake {
	in := &Intake{
		port:    port,
		history: history,
		logger:  logger,
		clock:   clock,
	}
	if n, ok := port.(bus.Notifier); ok {
		n.OnReceive(in.Notify)
	}
	return in
}

// Notify flags pending traffic. Safe to call from any context at any
// point in the loop's execution; it must never do more than this.
func (in *Intake) Notify() {
	in.pending.Store(true)
}

// Poll drains the controller when traffic is pending. Frames are pushed
// to the history and forwarded to the session logger in the exact order
// the port yielded them; the drain runs to empty before returning,
// bounded by the controller's buffer depth.
func (in *Intake) Poll() {
	if !in.pending.Swap(false) {
		return
	}
	for {
		frames := in.port.DrainReceived()
		if len(frames) == 0 {
			return
		}
		now := in.clock.NowMs()
		for _, f := range frames {
			in.history.Push(f)
			in.rxCount.Add(1)
			in.logger.AppendBus(models.BusRecord{
				TimestampMs: now,
				Dir:         models.DirRX,
				Frame:       f,
			})
		}
	}
}

// RxCount returns the number of frames taken in since startup or the
// last reset.
func (in *Intake) RxCount() uint64 { return in.rxCount.Load() }

// ResetCount zeroes the receive counter (explicit user reset).
func (in *Intake) ResetCount() { in.rxCount.Store(0) }
