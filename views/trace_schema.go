package views

import "can-datalogger/models"

// Trace file naming and column layout. The models' CSVHeader() methods
// stay the single source of truth; SchemaColumns is the per-stream view
// the session logger opens its files with.

// StreamType identifies one of the two session streams.
type StreamType int

const (
	StreamCAN StreamType = iota
	StreamMotion
)

var streamNames = map[StreamType]string{
	StreamCAN:    "can",
	StreamMotion: "imu",
}

func (s StreamType) String() string {
	if n, ok := streamNames[s]; ok {
		return n
	}
	return "unknown"
}

// File name pattern per stream: <prefix><SESSIONID>.csv, both streams of
// a session sharing one id.
const (
	CANLogPrefix    = "can_log_"
	MotionLogPrefix = "imu_log_"
	LogExt          = ".csv"
)

// FileName renders the trace file name for a stream and session id.
func FileName(s StreamType, sessionID string) string {
	switch s {
	case StreamCAN:
		return CANLogPrefix + sessionID + LogExt
	case StreamMotion:
		return MotionLogPrefix + sessionID + LogExt
	}
	return ""
}

// SchemaColumns is the canonical column list per stream.
var SchemaColumns = map[StreamType][]string{
	StreamCAN:    models.BusRecord{}.CSVHeader(),
	StreamMotion: models.MotionSample{}.CSVHeader(),
}
