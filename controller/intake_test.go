package controller

import (
	"strings"
	"testing"

	"can-datalogger/models"
	"can-datalogger/services/storage"
	"can-datalogger/utils"
	"can-datalogger/views"
)

// scriptPort is a scripted bus controller: each DrainReceived call pops
// one pre-queued batch, emulating traffic arriving between polls.
type scriptPort struct {
	batches [][]models.Frame
	drains  int
	txErr   error
	sent    []models.Frame
	notify  func()
}

func (p *scriptPort) Transmit(f models.Frame) error {
	if p.txErr != nil {
		return p.txErr
	}
	p.sent = append(p.sent, f)
	return nil
}

func (p *scriptPort) DrainReceived() []models.Frame {
	p.drains++
	if len(p.batches) == 0 {
		return nil
	}
	b := p.batches[0]
	p.batches = p.batches[1:]
	return b
}

func (p *scriptPort) Close() error        { return nil }
func (p *scriptPort) OnReceive(fn func()) { p.notify = fn }

func frameWithID(id uint32) models.Frame {
	f, err := models.NewFrame(id, []byte{byte(id)})
	if err != nil {
		panic(err)
	}
	return f
}

func newTestIntake(t *testing.T, port *scriptPort) (*Intake, *SessionLogger, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	clock := utils.NewManualClock(1000)
	logger := NewSessionLogger(store, clock, 0, 0, 1)
	history := models.NewFrameHistory(5)
	return NewIntake(port, history, logger, clock), logger, store
}

func TestIntake_RegistersNotification(t *testing.T) {
	port := &scriptPort{}
	in, _, _ := newTestIntake(t, port)
	if port.notify == nil {
		t.Fatal("Intake did not register the receive notification")
	}
	port.notify()
	in.Poll()
	if port.drains == 0 {
		t.Error("Notification did not lead to a drain")
	}
}

func TestIntake_NoPollWithoutNotify(t *testing.T) {
	port := &scriptPort{batches: [][]models.Frame{{frameWithID(1)}}}
	in, _, _ := newTestIntake(t, port)
	in.Poll()
	if port.drains != 0 {
		t.Errorf("Poll drained without pending notification (%d drains)", port.drains)
	}
}

func TestIntake_DrainsToEmptyInOrder(t *testing.T) {
	port := &scriptPort{batches: [][]models.Frame{
		{frameWithID(1), frameWithID(2)},
		{frameWithID(3)},
	}}
	in, logger, store := newTestIntake(t, port)
	if err := logger.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	id := logger.SessionID()

	in.Notify()
	in.Poll()

	if in.RxCount() != 3 {
		t.Errorf("RxCount = %d, want 3 (drain-to-empty)", in.RxCount())
	}
	recent := in.history.MostRecentFirst()
	for i, want := range []uint32{3, 2, 1} {
		if recent[i].ID != want {
			t.Errorf("History entry %d: expected ID %d, got %d", i, want, recent[i].ID)
		}
	}

	logger.Disable()
	lines := strings.Split(strings.TrimRight(store.Get(views.FileName(views.StreamCAN, id)).String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d lines", len(lines))
	}
	// Forwarded to the logger in exact drain order, all marked RX.
	for i, wantID := range []string{"0x001", "0x002", "0x003"} {
		fields := strings.Split(lines[i+1], ",")
		if fields[1] != "RX" || fields[2] != wantID {
			t.Errorf("Row %d = %q, want RX %s", i, lines[i+1], wantID)
		}
	}
}

func TestIntake_PendingClearedAfterPoll(t *testing.T) {
	port := &scriptPort{batches: [][]models.Frame{{frameWithID(1)}}}
	in, _, _ := newTestIntake(t, port)

	in.Notify()
	in.Poll()
	drains := port.drains

	in.Poll()
	if port.drains != drains {
		t.Error("Second Poll drained without a new notification")
	}
}
