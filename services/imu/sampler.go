// Package imu reads the inertial sensor. The scheduler pulls one sample
// per motion cadence tick; nothing here runs on its own goroutine.
package imu

import (
	"math"
	"math/rand"
	"sync/atomic"

	"can-datalogger/models"
)

// Driver is the raw sensor read: 3-axis acceleration in g and 3-axis
// angular rate in deg/s. Reads are bounded-latency and synchronous.
type Driver interface {
	ReadMotion() (ax, ay, az, gx, gy, gz float64, err error)
}

// Sampler stamps driver readings with the instrument clock and counts
// what it produced.
type Sampler struct {
	drv      Driver
	produced uint64
	failed   uint64
}

func NewSampler(drv Driver) *Sampler {
	return &Sampler{drv: drv}
}

// Sample reads the sensor once. ok is false when the driver failed;
// the scheduler skips the record and moves on.
func (s *Sampler) Sample(nowMs int64) (models.MotionSample, bool) {
	ax, ay, az, gx, gy, gz, err := s.drv.ReadMotion()
	if err != nil {
		atomic.AddUint64(&s.failed, 1)
		return models.MotionSample{}, false
	}
	atomic.AddUint64(&s.produced, 1)
	return models.MotionSample{
		TimestampMs: nowMs,
		AccelX:      ax, AccelY: ay, AccelZ: az,
		GyroX: gx, GyroY: gy, GyroZ: gz,
	}, true
}

func (s *Sampler) Stats() (produced, failed uint64) {
	return atomic.LoadUint64(&s.produced), atomic.LoadUint64(&s.failed)
}

// SimDriver synthesizes a gently moving instrument: small sinusoidal
// sway plus sensor noise, gravity on Z.
type SimDriver struct {
	step float64
}

func NewSimDriver() *SimDriver { return &SimDriver{} }

func (d *SimDriver) ReadMotion() (ax, ay, az, gx, gy, gz float64, err error) {
	d.step += 0.01
	ax = 0.02*math.Sin(d.step) + rand.Float64()*0.005
	ay = 0.01*math.Cos(d.step) + rand.Float64()*0.005
	az = 1.0 + rand.Float64()*0.002
	gx = 0.1*math.Sin(d.step*2) + rand.Float64()*0.05
	gy = 0.1*math.Cos(d.step*2) + rand.Float64()*0.05
	gz = 0.05 + rand.Float64()*0.02
	return
}
