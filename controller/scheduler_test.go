package controller

import (
	"testing"

	"can-datalogger/models"
	"can-datalogger/services/bus"
	"can-datalogger/services/imu"
	"can-datalogger/services/storage"
	"can-datalogger/utils"
)

func newTestScheduler(t *testing.T, port *scriptPort) (*Scheduler, *AcquisitionState, *SessionLogger, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	clock := utils.NewManualClock(0)
	logger := NewSessionLogger(store, clock, 0, 0, 1)
	history := models.NewFrameHistory(5)
	intake := NewIntake(port, history, logger, clock)
	state := NewAcquisitionState()
	sampler := imu.NewSampler(imu.NewSimDriver())
	probe, _ := models.NewFrame(0x7DF, utils.DefaultProbeData())
	sched := NewScheduler(state, intake, logger, sampler, port, clock,
		probe, "Speed", 1000, 100)
	return sched, state, logger, store
}

func TestScheduler_TransmitCadence(t *testing.T) {
	port := &scriptPort{}
	sched, state, _, _ := newTestScheduler(t, port)

	sched.Tick(0)
	if len(port.sent) != 0 {
		t.Fatal("Transmitted while paused")
	}

	// Rising edge sends immediately.
	state.ToggleTransmit()
	sched.Tick(10)
	if len(port.sent) != 1 {
		t.Fatalf("Expected immediate send on enable, got %d", len(port.sent))
	}

	sched.Tick(1009)
	if len(port.sent) != 1 {
		t.Fatal("Sent before the interval elapsed")
	}
	sched.Tick(1010)
	if len(port.sent) != 2 {
		t.Fatalf("Expected second send at interval, got %d", len(port.sent))
	}
	if port.sent[0].ID != 0x7DF {
		t.Errorf("Probe ID = 0x%X, want 0x7DF", port.sent[0].ID)
	}
	if sched.TxCount() != 2 {
		t.Errorf("TxCount = %d, want 2", sched.TxCount())
	}
}

func TestScheduler_TransmitFailureCountsOnly(t *testing.T) {
	port := &scriptPort{txErr: bus.ErrControllerBusy}
	sched, state, logger, _ := newTestScheduler(t, port)
	if err := logger.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	state.loggingRequested.Store(true)
	state.ToggleTransmit()

	sched.Tick(10)
	sched.Tick(1010)
	if sched.TxFailStreak() != 2 {
		t.Errorf("TxFailStreak = %d, want 2", sched.TxFailStreak())
	}
	if sched.TxCount() != 0 {
		t.Errorf("TxCount = %d after failures", sched.TxCount())
	}
	busRows, _ := logger.Rows()
	if busRows != 0 {
		t.Errorf("Failed transmits were recorded (%d rows)", busRows)
	}

	// A success clears the streak.
	port.txErr = nil
	sched.Tick(2010)
	if sched.TxFailStreak() != 0 {
		t.Errorf("TxFailStreak = %d after success", sched.TxFailStreak())
	}
}

func TestScheduler_LoggingReconcile(t *testing.T) {
	port := &scriptPort{}
	sched, state, logger, _ := newTestScheduler(t, port)

	state.ToggleLogging()
	sched.Tick(0)
	if !logger.Enabled() {
		t.Fatal("Logging request not honored")
	}

	state.ToggleLogging()
	sched.Tick(10)
	if logger.Enabled() {
		t.Fatal("Logging still enabled after request cleared")
	}
}

func TestScheduler_EnableFailureClearsRequest(t *testing.T) {
	port := &scriptPort{}
	sched, state, logger, store := newTestScheduler(t, port)
	store.Unavailable = true

	state.ToggleLogging()
	sched.Tick(0)
	if logger.Enabled() {
		t.Fatal("Enabled despite missing card")
	}
	if state.LoggingRequested() {
		t.Error("Failed enable left the request pending")
	}
}

func TestScheduler_ManualReEnableAfterFault(t *testing.T) {
	port := &scriptPort{}
	store := storage.NewMemStore()
	clock := utils.NewManualClock(0)
	logger := NewSessionLogger(store, clock, 70, utils.DefaultFlushIntervalMs, 1)
	history := models.NewFrameHistory(5)
	intake := NewIntake(port, history, logger, clock)
	state := NewAcquisitionState()
	sampler := imu.NewSampler(imu.NewSimDriver())
	probe, _ := models.NewFrame(0x7DF, utils.DefaultProbeData())
	sched := NewScheduler(state, intake, logger, sampler, port, clock,
		probe, "Speed", 1000, 100)

	state.ToggleLogging()
	sched.Tick(0)
	if !logger.Enabled() {
		t.Fatal("Setup enable failed")
	}

	// Fail the rotation's first create so the session faults mid-run.
	store.FailCreateAt = 3
	f := frameWithID(0x123)
	for ts := int64(1000); ts < 1003; ts++ {
		logger.AppendBus(models.BusRecord{TimestampMs: ts, Dir: models.DirRX, Frame: f})
	}
	if !logger.Fault() || logger.Enabled() {
		t.Fatal("Setup fault did not take")
	}

	// The request that was pending when the fault struck is stale: it is
	// cleared and recording does not come back on its own.
	sched.Tick(10)
	if logger.Enabled() {
		t.Fatal("Recording re-enabled without a fresh request")
	}
	if state.LoggingRequested() {
		t.Error("Stale logging request not cleared")
	}

	// A fresh toggle retries and clears the fault.
	state.ToggleLogging()
	sched.Tick(20)
	if !logger.Enabled() {
		t.Fatal("Fresh request after fault did not re-enable recording")
	}
	if logger.Fault() {
		t.Error("Fault flag survived a successful re-enable")
	}
	if logger.SessionID() == "" {
		t.Error("Re-enabled session has no id")
	}
}

func TestScheduler_MotionCadence(t *testing.T) {
	port := &scriptPort{}
	sched, state, logger, _ := newTestScheduler(t, port)
	state.ToggleLogging()

	sched.Tick(0) // enables logging; cadence not yet due
	sched.Tick(100)
	sched.Tick(150)
	sched.Tick(200)

	_, motionRows := logger.Rows()
	if motionRows != 2 {
		t.Errorf("Motion rows = %d, want 2 (100ms cadence)", motionRows)
	}
}

func TestScheduler_NoMotionSamplingWhileDisabled(t *testing.T) {
	port := &scriptPort{}
	sched, _, logger, _ := newTestScheduler(t, port)

	sched.Tick(0)
	sched.Tick(100)
	sched.Tick(200)

	_, motionRows := logger.Rows()
	if motionRows != 0 {
		t.Errorf("Sampled motion while logging disabled: %d rows", motionRows)
	}
}

func TestScheduler_ResetClearsCountersAndHistory(t *testing.T) {
	port := &scriptPort{batches: [][]models.Frame{{frameWithID(1), frameWithID(2)}}}
	sched, state, _, _ := newTestScheduler(t, port)
	state.ToggleTransmit()

	sched.intake.Notify()
	sched.Tick(10)
	if snap := sched.Snapshot(); snap.RxCount != 2 || snap.TxCount != 1 {
		t.Fatalf("Setup counters wrong: %+v", snap)
	}

	sched.RequestReset()
	sched.Tick(20)
	snap := sched.Snapshot()
	if snap.RxCount != 0 || snap.TxCount != 0 {
		t.Errorf("Counters not reset: rx=%d tx=%d", snap.RxCount, snap.TxCount)
	}
	if len(snap.History) != 0 {
		t.Errorf("History not cleared: %d entries", len(snap.History))
	}
}

func TestScheduler_SnapshotReflectsSession(t *testing.T) {
	port := &scriptPort{}
	sched, state, logger, _ := newTestScheduler(t, port)
	state.ToggleLogging()
	sched.Tick(0)

	snap := sched.Snapshot()
	if !snap.LoggingEnabled {
		t.Error("Snapshot missing logging state")
	}
	if snap.SessionID != logger.SessionID() {
		t.Errorf("Snapshot session %q != logger session %q", snap.SessionID, logger.SessionID())
	}
	if snap.ProbeName != "Speed" {
		t.Errorf("Snapshot probe name = %q", snap.ProbeName)
	}
}
