package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ─── Bus config ─────────────────────────────────────────────────────────

// ProbeFrameConfig describes the diagnostic frame transmitted on the tx
// cadence. Pure configuration data; the core never inspects payloads.
type ProbeFrameConfig struct {
	Name string `yaml:"name"` // display label, e.g. "Speed"
	ID   uint32 `yaml:"id"`
	Data []byte `yaml:"data"`
}

type BusConfig struct {
	Device       string           `yaml:"device"` // e.g. "can0"; empty selects the sim port
	BitrateKbps  int              `yaml:"bitrate_kbps"`
	Probe        ProbeFrameConfig `yaml:"probe"`
	TxIntervalMs int              `yaml:"tx_interval_ms"`
	SimRateHz    int              `yaml:"sim_rate_hz"`
	HistoryDepth int              `yaml:"history_depth"`
}

// ─── IMU config ─────────────────────────────────────────────────────────

type IMUConfig struct {
	SampleIntervalMs int  `yaml:"sample_interval_ms"`
	Simulate         bool `yaml:"simulate"`
}

// ─── Storage config ─────────────────────────────────────────────────────

type StorageConfig struct {
	MountDir        string `yaml:"mount_dir"`
	MaxFileBytes    int64  `yaml:"max_file_bytes"`
	FlushIntervalMs int64  `yaml:"flush_interval_ms"`
	BufferSizeKB    int    `yaml:"buffer_size_kb"`
}

// ─── UI config ──────────────────────────────────────────────────────────

type UIConfig struct {
	RefreshMs int  `yaml:"refresh_ms"`
	Headless  bool `yaml:"headless"`
}

// LoggerConfig is the top-level structure for logger.yaml.
type LoggerConfig struct {
	Bus     BusConfig     `yaml:"bus"`
	IMU     IMUConfig     `yaml:"imu"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
}

// Default cadences and ceilings of the instrument.
const (
	DefaultTxIntervalMs     = 1000
	DefaultIMUIntervalMs    = 100
	DefaultFlushIntervalMs  = 5000
	DefaultMaxFileBytes     = 10 * 1024 * 1024
	DefaultProbeID          = 0x7DF
	DefaultProbeName        = "Speed"
	DefaultUIRefreshMs      = 100
	DefaultStorageBufferKB  = 32
	DefaultSimTrafficRateHz = 20
)

// DefaultProbeData is OBD-II mode 01 PID 0x0D (vehicle speed), padded.
func DefaultProbeData() []byte {
	return []byte{0x02, 0x01, 0x0D, 0x55, 0x55, 0x55, 0x55, 0x55}
}

// LoadLoggerConfig reads and parses logger.yaml, filling reference
// defaults for anything left unset.
func LoadLoggerConfig(path string) (*LoggerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logger config: %w", err)
	}
	var cfg LoggerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse logger config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with the built-in defaults.
func (c *LoggerConfig) ApplyDefaults() {
	if c.Bus.TxIntervalMs <= 0 {
		c.Bus.TxIntervalMs = DefaultTxIntervalMs
	}
	if c.Bus.SimRateHz <= 0 {
		c.Bus.SimRateHz = DefaultSimTrafficRateHz
	}
	if c.Bus.Probe.ID == 0 && len(c.Bus.Probe.Data) == 0 {
		c.Bus.Probe = ProbeFrameConfig{
			Name: DefaultProbeName,
			ID:   DefaultProbeID,
			Data: DefaultProbeData(),
		}
	}
	if c.IMU.SampleIntervalMs <= 0 {
		c.IMU.SampleIntervalMs = DefaultIMUIntervalMs
	}
	if c.Storage.MaxFileBytes <= 0 {
		c.Storage.MaxFileBytes = DefaultMaxFileBytes
	}
	if c.Storage.FlushIntervalMs <= 0 {
		c.Storage.FlushIntervalMs = DefaultFlushIntervalMs
	}
	if c.Storage.BufferSizeKB <= 0 {
		c.Storage.BufferSizeKB = DefaultStorageBufferKB
	}
	if c.UI.RefreshMs <= 0 {
		c.UI.RefreshMs = DefaultUIRefreshMs
	}
}
