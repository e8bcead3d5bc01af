package controller

import (
	"fmt"
	"sync"
	"sync/atomic"

	"can-datalogger/models"
	"can-datalogger/services/storage"
	"can-datalogger/utils"
	"can-datalogger/views"
)

// SessionLogger records the bus trace and the motion trace as a pair of
// append-only files sharing one session id. The pairing invariant is the
// crux: both streams are open under the same id, or both are closed,
// never one without the other, so a CAN trace and a motion trace from
// different sessions can never be read as simultaneous.
//
// All mutation happens from the cooperative loop; the tiny mutex only
// guards the snapshot the presentation layer reads.
type SessionLogger struct {
	store    storage.Store
	clock    utils.Clock
	maxBytes int64
	flushMs  int64
	bufSize  int

	enabled   bool
	sessionID string
	canW      *views.TraceWriter
	motionW   *views.TraceWriter
	lastFlush int64

	fault      atomic.Bool
	rotations  atomic.Uint64
	busRows    atomic.Uint64
	motionRows atomic.Uint64

	mu sync.Mutex // presentation snapshot of enabled/sessionID
}

// NewSessionLogger wires the logger to a store and clock. Ceiling and
// flush interval fall back to the defaults (10 MiB, 5 s).
func NewSessionLogger(store storage.Store, clock utils.Clock, maxBytes, flushIntervalMs int64, bufSizeKB int) *SessionLogger {
	if maxBytes <= 0 {
		maxBytes = utils.DefaultMaxFileBytes
	}
	if flushIntervalMs <= 0 {
		flushIntervalMs = utils.DefaultFlushIntervalMs
	}
	return &SessionLogger{
		store:    store,
		clock:    clock,
		maxBytes: maxBytes,
		flushMs:  flushIntervalMs,
		bufSize:  bufSizeKB * 1024,
	}
}

// Enable opens a fresh session: new id, both streams created with their
// headers, counters zeroed. If either stream fails to open, whichever
// one did open is closed again and the logger stays Disabled.
func (sl *SessionLogger) Enable() error {
	if sl.enabled {
		return nil
	}
	if !sl.store.Available() {
		return fmt.Errorf("session logger: storage unavailable")
	}
	id, err := utils.NewSessionID()
	if err != nil {
		return fmt.Errorf("session logger: %w", err)
	}
	if err := sl.openPair(id); err != nil {
		return err
	}
	sl.setSession(true, id)
	sl.fault.Store(false)
	sl.lastFlush = sl.clock.NowMs()
	utils.L().Info("logging enabled        (session=%s)", id)
	return nil
}

// Disable flushes and closes both streams.
func (sl *SessionLogger) Disable() {
	if !sl.enabled {
		return
	}
	canRows, motionRows := sl.canW.Rows(), sl.motionW.Rows()
	sl.closePair()
	sl.setSession(false, "")
	utils.L().Info("logging disabled       (can_rows=%d, imu_rows=%d)", canRows, motionRows)
}

// openPair creates both trace files under one id, rolling back the
// first on failure of the second so no orphaned stream stays open.
func (sl *SessionLogger) openPair(id string) error {
	canW, err := views.NewTraceWriter(
		sl.store, views.FileName(views.StreamCAN, id),
		views.SchemaColumns[views.StreamCAN], sl.bufSize)
	if err != nil {
		return fmt.Errorf("session logger: %s stream: %w", views.StreamCAN, err)
	}
	motionW, err := views.NewTraceWriter(
		sl.store, views.FileName(views.StreamMotion, id),
		views.SchemaColumns[views.StreamMotion], sl.bufSize)
	if err != nil {
		canW.Close()
		return fmt.Errorf("session logger: %s stream: %w", views.StreamMotion, err)
	}
	sl.canW, sl.motionW = canW, motionW
	return nil
}

func (sl *SessionLogger) closePair() {
	if sl.canW != nil {
		_ = sl.canW.Close()
		sl.canW = nil
	}
	if sl.motionW != nil {
		_ = sl.motionW.Close()
		sl.motionW = nil
	}
}

// rotateIfNeeded starts a fresh session once either stream has grown
// strictly past the ceiling. Called before serializing a record, so the
// record that crossed the ceiling stays the last one of the old session
// and nothing straddles the boundary. Rotation failure is fatal to
// logging: both streams end up closed and the fault flag is raised.
func (sl *SessionLogger) rotateIfNeeded() error {
	if sl.canW.Size() <= sl.maxBytes && sl.motionW.Size() <= sl.maxBytes {
		return nil
	}
	sl.closePair()
	id, err := utils.NewSessionID()
	if err == nil {
		err = sl.openPair(id)
	}
	if err != nil {
		sl.setSession(false, "")
		sl.fault.Store(true)
		utils.L().Error("log rotation failed, logging disabled: %v", err)
		return err
	}
	sl.setSession(true, id)
	sl.rotations.Add(1)
	utils.L().Info("logs rotated           (session=%s)", id)
	return nil
}

// AppendBus records one transmitted or received frame. No-op while
// Disabled or after a storage fault.
func (sl *SessionLogger) AppendBus(rec models.BusRecord) {
	if !sl.enabled || sl.canW == nil {
		return
	}
	if err := sl.rotateIfNeeded(); err != nil {
		return
	}
	if err := sl.canW.WriteRow(rec.CSVRow()); err != nil {
		sl.failSession("can trace write", err)
		return
	}
	sl.busRows.Add(1)
}

// AppendMotion records one inertial sample. No-op while Disabled or
// after a storage fault.
func (sl *SessionLogger) AppendMotion(s models.MotionSample) {
	if !sl.enabled || sl.motionW == nil {
		return
	}
	if err := sl.rotateIfNeeded(); err != nil {
		return
	}
	if err := sl.motionW.WriteRow(s.CSVRow()); err != nil {
		sl.failSession("motion trace write", err)
		return
	}
	sl.motionRows.Add(1)
}

// FlushIfDue commits both streams to the medium at most once per flush
// interval, bounding loss on power failure without a sync per record.
func (sl *SessionLogger) FlushIfDue(nowMs int64) {
	if !sl.enabled {
		return
	}
	if nowMs-sl.lastFlush < sl.flushMs {
		return
	}
	sl.lastFlush = nowMs
	if err := sl.canW.Sync(); err != nil {
		sl.failSession("can trace sync", err)
		return
	}
	if err := sl.motionW.Sync(); err != nil {
		sl.failSession("motion trace sync", err)
	}
}

// failSession force-transitions to Disabled on a mid-session storage
// failure, closing both streams and raising the fault flag for the
// presentation layer. No automatic re-enable is attempted.
func (sl *SessionLogger) failSession(op string, err error) {
	utils.L().Error("%s failed, logging disabled: %v", op, err)
	sl.closePair()
	sl.setSession(false, "")
	sl.fault.Store(true)
}

// ResetCounters zeroes the in-memory row tallies. Independent of
// rotation; it does not touch the streams.
func (sl *SessionLogger) ResetCounters() {
	sl.busRows.Store(0)
	sl.motionRows.Store(0)
}

func (sl *SessionLogger) setSession(enabled bool, id string) {
	sl.mu.Lock()
	sl.enabled = enabled
	sl.sessionID = id
	sl.mu.Unlock()
}

// ─── presentation accessors ─────────────────────────────────────────────

func (sl *SessionLogger) Enabled() bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.enabled
}

func (sl *SessionLogger) SessionID() string {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.sessionID
}

func (sl *SessionLogger) Fault() bool { return sl.fault.Load() }

func (sl *SessionLogger) Rotations() uint64 { return sl.rotations.Load() }

func (sl *SessionLogger) Rows() (bus, motion uint64) {
	return sl.busRows.Load(), sl.motionRows.Load()
}
