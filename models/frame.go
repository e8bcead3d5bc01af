package models

import (
	"errors"
	"fmt"
	"strings"
)

// MaxFrameData is the classical CAN payload limit.
const MaxFrameData = 8

// Frame is one classical CAN frame. Identifiers up to 29 bit are
// accepted; the payload carries 0..8 bytes. Frames are value types and
// copied freely once captured.
type Frame struct {
	ID   uint32
	Len  uint8
	Data [MaxFrameData]byte
}

const maxExtID = 0x1FFFFFFF

var (
	ErrInvalidID  = errors.New("models: identifier exceeds 29 bits")
	ErrInvalidLen = errors.New("models: data length exceeds 8 bytes")
)

// NewFrame builds a frame from an identifier and payload slice.
func NewFrame(id uint32, data []byte) (Frame, error) {
	if id > maxExtID {
		return Frame{}, ErrInvalidID
	}
	if len(data) > MaxFrameData {
		return Frame{}, ErrInvalidLen
	}
	f := Frame{ID: id, Len: uint8(len(data))}
	copy(f.Data[:], data)
	return f, nil
}

// Payload returns the valid portion of the data array.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > MaxFrameData {
		n = MaxFrameData
	}
	return f.Data[:n]
}

// IDString renders the identifier as zero-padded uppercase hex with a
// 0x prefix and at least three digits, the usual standard-id width.
func (f Frame) IDString() string {
	return fmt.Sprintf("0x%03X", f.ID)
}

// DataHex renders the payload as space-separated uppercase hex bytes.
// A zero-length frame renders as the empty string.
func (f Frame) DataHex() string {
	var b strings.Builder
	for i, d := range f.Payload() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", d)
	}
	return b.String()
}
