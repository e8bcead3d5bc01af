package models

import (
	"testing"
)

func frameWithID(id uint32) Frame {
	f, _ := NewFrame(id, []byte{byte(id)})
	return f
}

func TestFrameHistory_Empty(t *testing.T) {
	h := NewFrameHistory(5)
	if got := h.MostRecentFirst(); len(got) != 0 {
		t.Errorf("Expected no entries, got %d", len(got))
	}
}

func TestFrameHistory_PartialFill(t *testing.T) {
	h := NewFrameHistory(5)
	h.Push(frameWithID(1))
	h.Push(frameWithID(2))
	h.Push(frameWithID(3))

	got := h.MostRecentFirst()
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	for i, want := range []uint32{3, 2, 1} {
		if got[i].ID != want {
			t.Errorf("Entry %d: expected ID %d, got %d", i, want, got[i].ID)
		}
	}
}

func TestFrameHistory_OverwritesOldest(t *testing.T) {
	// 6 frames into a 5-slot ring: the 1st is evicted.
	h := NewFrameHistory(5)
	for id := uint32(1); id <= 6; id++ {
		h.Push(frameWithID(id))
	}

	got := h.MostRecentFirst()
	if len(got) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(got))
	}
	for i, want := range []uint32{6, 5, 4, 3, 2} {
		if got[i].ID != want {
			t.Errorf("Entry %d: expected ID %d, got %d", i, want, got[i].ID)
		}
	}
}

func TestFrameHistory_ReverseArrivalOrder(t *testing.T) {
	// For M pushes, MostRecentFirst returns min(M, N) entries, newest
	// first, never more than N.
	for m := 0; m <= 12; m++ {
		h := NewFrameHistory(5)
		for id := uint32(1); id <= uint32(m); id++ {
			h.Push(frameWithID(id))
		}
		got := h.MostRecentFirst()
		wantLen := m
		if wantLen > 5 {
			wantLen = 5
		}
		if len(got) != wantLen {
			t.Fatalf("M=%d: expected %d entries, got %d", m, wantLen, len(got))
		}
		for i := range got {
			if want := uint32(m - i); got[i].ID != want {
				t.Errorf("M=%d entry %d: expected ID %d, got %d", m, i, want, got[i].ID)
			}
		}
	}
}

func TestFrameHistory_KeepsZeroLengthFrames(t *testing.T) {
	h := NewFrameHistory(5)
	empty, _ := NewFrame(0x123, nil)
	h.Push(empty)

	got := h.MostRecentFirst()
	if len(got) != 1 {
		t.Fatalf("Zero-length frame dropped from history")
	}
	if got[0].ID != 0x123 || got[0].Len != 0 {
		t.Errorf("Unexpected entry: %+v", got[0])
	}
}

func TestFrameHistory_Clear(t *testing.T) {
	h := NewFrameHistory(5)
	for id := uint32(1); id <= 3; id++ {
		h.Push(frameWithID(id))
	}
	h.Clear()
	if got := h.MostRecentFirst(); len(got) != 0 {
		t.Errorf("Expected empty history after Clear, got %d entries", len(got))
	}
	h.Push(frameWithID(9))
	got := h.MostRecentFirst()
	if len(got) != 1 || got[0].ID != 9 {
		t.Errorf("History unusable after Clear: %+v", got)
	}
}
