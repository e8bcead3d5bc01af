package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"can-datalogger/models"
	"can-datalogger/services/bus"
	"can-datalogger/services/imu"
	"can-datalogger/utils"
)

// Scheduler is the single cooperative loop of the instrument. One Tick
// polls the intake, reconciles the logging request, drives the probe
// transmit cadence, the motion sampling cadence and the flush cadence.
// Every piece of mutable acquisition state is owned here or by the
// components it calls from loop context; the notification handler never
// enters this code.
type Scheduler struct {
	state   *AcquisitionState
	intake  *Intake
	logger  *SessionLogger
	sampler *imu.Sampler
	port    bus.Port
	clock   utils.Clock

	probe         models.Frame
	probeName     string
	txIntervalMs  int64
	imuIntervalMs int64

	lastTx         int64
	lastSample     int64
	wasTransmit    bool
	lastLoggingReq bool

	txCount      atomic.Uint64
	txFailStreak atomic.Uint64
	resetPending atomic.Bool

	snapMu sync.Mutex
	snap   Snapshot
}

// Snapshot is the read-only view the presentation layer renders.
type Snapshot struct {
	NowMs           int64
	TxCount         uint64
	RxCount         uint64
	TxFailStreak    uint64
	TransmitEnabled bool
	LoggingEnabled  bool
	StorageFault    bool
	SessionID       string
	BusRows         uint64
	MotionRows      uint64
	Rotations       uint64
	ProbeName       string
	Probe           models.Frame
	History         []models.Frame
}

func NewScheduler(
	state *AcquisitionState,
	intake *Intake,
	logger *SessionLogger,
	sampler *imu.Sampler,
	port bus.Port,
	clock utils.Clock,
	probe models.Frame,
	probeName string,
	txIntervalMs, imuIntervalMs int64,
) *Scheduler {
	if txIntervalMs <= 0 {
		txIntervalMs = utils.DefaultTxIntervalMs
	}
	if imuIntervalMs <= 0 {
		imuIntervalMs = utils.DefaultIMUIntervalMs
	}
	return &Scheduler{
		state:         state,
		intake:        intake,
		logger:        logger,
		sampler:       sampler,
		port:          port,
		clock:         clock,
		probe:         probe,
		probeName:     probeName,
		txIntervalMs:  txIntervalMs,
		imuIntervalMs: imuIntervalMs,
	}
}

// Tick runs one pass of the loop. Non-blocking apart from bounded
// storage and bus calls.
func (s *Scheduler) Tick(now int64) {
	s.intake.Poll()
	s.reconcileLogging()
	s.handleReset()

	if s.state.TransmitEnabled() {
		// Rising edge backdates the deadline so the first send is immediate.
		if !s.wasTransmit {
			s.lastTx = now - s.txIntervalMs
			s.wasTransmit = true
		}
		if now-s.lastTx >= s.txIntervalMs {
			s.lastTx = now
			s.transmitProbe(now)
		}
	} else {
		s.wasTransmit = false
	}

	if s.logger.Enabled() && now-s.lastSample >= s.imuIntervalMs {
		s.lastSample = now
		if sample, ok := s.sampler.Sample(now); ok {
			s.logger.AppendMotion(sample)
		}
	}

	s.logger.FlushIfDue(now)
	s.publish(now)
}

// Run loops Tick until the context is cancelled, then closes the
// session cleanly.
func (s *Scheduler) Run(ctx context.Context) {
	utils.L().Info("scheduler running      (tx=%dms, imu=%dms)", s.txIntervalMs, s.imuIntervalMs)
	for ctx.Err() == nil {
		s.Tick(s.clock.NowMs())
		time.Sleep(2 * time.Millisecond)
	}
	s.logger.Disable()
	utils.L().Info("scheduler stopped      (tx=%d, rx=%d)", s.txCount.Load(), s.intake.RxCount())
}

// reconcileLogging performs enable/disable transitions in loop context
// so stream handles are never touched from anywhere else. A request
// that was already pending when a storage fault struck is stale and
// gets cleared; a fresh user toggle retries the enable, which resets
// the fault flag on success.
func (s *Scheduler) reconcileLogging() {
	requested := s.state.LoggingRequested()
	fresh := requested && !s.lastLoggingReq
	s.lastLoggingReq = requested
	switch {
	case requested && !s.logger.Enabled():
		if s.logger.Fault() && !fresh {
			s.state.loggingRequested.Store(false)
			s.lastLoggingReq = false
			return
		}
		if err := s.logger.Enable(); err != nil {
			utils.L().Error("enable logging: %v", err)
			s.state.loggingRequested.Store(false)
			s.lastLoggingReq = false
		}
	case !requested && s.logger.Enabled():
		s.logger.Disable()
	}
}

func (s *Scheduler) transmitProbe(now int64) {
	if err := s.port.Transmit(s.probe); err != nil {
		s.txFailStreak.Add(1)
		utils.L().Debug("probe transmit failed: %v", err)
		return
	}
	s.txCount.Add(1)
	s.txFailStreak.Store(0)
	s.logger.AppendBus(models.BusRecord{
		TimestampMs: now,
		Dir:         models.DirTX,
		Frame:       s.probe,
	})
}

func (s *Scheduler) handleReset() {
	if !s.resetPending.Swap(false) {
		return
	}
	s.intake.history.Clear()
	s.intake.ResetCount()
	s.txCount.Store(0)
	s.txFailStreak.Store(0)
	s.logger.ResetCounters()
	utils.L().Info("counters reset")
}

// RequestReset asks the loop to clear history and counters on its next
// tick. Safe from any goroutine.
func (s *Scheduler) RequestReset() { s.resetPending.Store(true) }

// TxCount returns probe frames sent since startup or the last reset.
func (s *Scheduler) TxCount() uint64 { return s.txCount.Load() }

// TxFailStreak returns the consecutive transmit failure count, the only
// escalation signal this core exposes.
func (s *Scheduler) TxFailStreak() uint64 { return s.txFailStreak.Load() }

func (s *Scheduler) publish(now int64) {
	busRows, motionRows := s.logger.Rows()
	snap := Snapshot{
		NowMs:           now,
		TxCount:         s.txCount.Load(),
		RxCount:         s.intake.RxCount(),
		TxFailStreak:    s.txFailStreak.Load(),
		TransmitEnabled: s.state.TransmitEnabled(),
		LoggingEnabled:  s.logger.Enabled(),
		StorageFault:    s.logger.Fault(),
		SessionID:       s.logger.SessionID(),
		BusRows:         busRows,
		MotionRows:      motionRows,
		Rotations:       s.logger.Rotations(),
		ProbeName:       s.probeName,
		Probe:           s.probe,
		History:         s.intake.history.MostRecentFirst(),
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

// Snapshot returns the last published view. Safe from any goroutine.
func (s *Scheduler) Snapshot() Snapshot {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.snap
}
