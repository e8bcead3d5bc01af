package models

// FrameHistory is a fixed-capacity ring of the most recently observed
// inbound frames, kept for the status display. Insertion overwrites the
// oldest slot; arrival order is the only ordering. A per-slot validity
// flag keeps zero-length frames distinguishable from never-written
// slots, so they are not dropped from the display.
//
// The history is mutated only from the cooperative loop (Intake.Poll)
// and needs no locking.
type FrameHistory struct {
	slots      []Frame
	valid      []bool
	writeIndex int
}

// HistoryDepth is the default retention of the status display.
const HistoryDepth = 5

// NewFrameHistory allocates a ring of n slots (HistoryDepth if n <= 0).
func NewFrameHistory(n int) *FrameHistory {
	if n <= 0 {
		n = HistoryDepth
	}
	return &FrameHistory{
		slots: make([]Frame, n),
		valid: make([]bool, n),
	}
}

// Cap returns the fixed capacity of the ring.
func (h *FrameHistory) Cap() int { return len(h.slots) }

// Push stores a frame in the oldest slot. O(1).
func (h *FrameHistory) Push(f Frame) {
	i := h.writeIndex % len(h.slots)
	h.slots[i] = f
	h.valid[i] = true
	h.writeIndex++
}

// MostRecentFirst returns up to Cap() frames, newest first, skipping
// slots that were never written. Purely derived; does not mutate.
func (h *FrameHistory) MostRecentFirst() []Frame {
	n := len(h.slots)
	out := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		idx := ((h.writeIndex-1-i)%n + n) % n
		if h.valid[idx] {
			out = append(out, h.slots[idx])
		}
	}
	return out
}

// Clear resets every slot; used on explicit user reset.
func (h *FrameHistory) Clear() {
	for i := range h.slots {
		h.slots[i] = Frame{}
		h.valid[i] = false
	}
	h.writeIndex = 0
}
