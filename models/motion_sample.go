package models

// MotionSample holds one inertial reading: 3-axis acceleration plus
// 3-axis angular rate, stamped with the instrument's millisecond clock.
type MotionSample struct {
	TimestampMs int64
	AccelX      float64 // g
	AccelY      float64
	AccelZ      float64
	GyroX       float64 // deg/s
	GyroY       float64
	GyroZ       float64
}

func (MotionSample) CSVHeader() []string {
	return []string{
		"timestamp_ms",
		"accel_x", "accel_y", "accel_z",
		"gyro_x", "gyro_y", "gyro_z",
	}
}

// CSVRow renders every axis at a fixed 4 decimal places, matching the
// motion trace file contract.
func (s *MotionSample) CSVRow() []string {
	return []string{
		itoa64(s.TimestampMs),
		ftoa(s.AccelX, 4), ftoa(s.AccelY, 4), ftoa(s.AccelZ, 4),
		ftoa(s.GyroX, 4), ftoa(s.GyroY, 4), ftoa(s.GyroZ, 4),
	}
}
