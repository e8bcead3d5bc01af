package controller

import "sync/atomic"

// AcquisitionState holds the process-wide mode flags. The input
// collaborator only ever toggles these booleans; the scheduler reads
// them every tick and performs the actual transitions in loop context.
type AcquisitionState struct {
	loggingRequested atomic.Bool
	transmitEnabled  atomic.Bool
}

func NewAcquisitionState() *AcquisitionState {
	// Both paused at startup, like the instrument.
	return &AcquisitionState{}
}

func (s *AcquisitionState) LoggingRequested() bool { return s.loggingRequested.Load() }
func (s *AcquisitionState) TransmitEnabled() bool  { return s.transmitEnabled.Load() }

// ToggleLogging flips the recording request and returns the new value.
func (s *AcquisitionState) ToggleLogging() bool {
	for {
		v := s.loggingRequested.Load()
		if s.loggingRequested.CompareAndSwap(v, !v) {
			return !v
		}
	}
}

// ToggleTransmit flips the periodic-transmit flag and returns the new
// value.
func (s *AcquisitionState) ToggleTransmit() bool {
	for {
		v := s.transmitEnabled.Load()
		if s.transmitEnabled.CompareAndSwap(v, !v) {
			return !v
		}
	}
}
