// Package config loads the kiosk pipeline's on-disk configuration.
//
// Grounded on sakateka-yanet2's controlplane/pkg/yncp/cfg.go:
// DefaultConfig builds a complete, runnable default; LoadConfig reads
// a YAML file on top of those defaults, identical in shape down to
// the error-wrapping style.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"attendkiosk"
)

// Config is the full set of tunables the Pipeline Controller needs to
// start.
type Config struct {
	// ListenAddr is the address the HTTP Streamer binds to.
	ListenAddr string `yaml:"listen_addr"`

	// RingSlots is the ring's slot count (must be >= 2).
	RingSlots int `yaml:"ring_slots"`

	// Detectors configures the Detection Fan-out.
	Detectors DetectorsConfig `yaml:"detectors"`

	// CameraProbeBound is how many device indices the Camera Source
	// probes before giving up on a single open attempt.
	CameraProbeBound int `yaml:"camera_probe_bound"`

	// Resolution, if non-zero, overrides the camera's own initial
	// resolution policy (spec.md §4.B). A reload picks this field back
	// up and pushes it onto the pipeline's resolution_in channel, so
	// operators can change resolution by editing the config file and
	// sending SIGHUP rather than restarting kioskd.
	Resolution kiosk.Resolution `yaml:"resolution"`
}

// DetectorsConfig configures the Detection Fan-out.
type DetectorsConfig struct {
	// Downscales is the ordered list of downscale factors, one
	// detector worker per entry.
	Downscales []int `yaml:"downscales"`

	// OutboundBufferSize is the capacity of the outbound QR channel.
	OutboundBufferSize int `yaml:"outbound_buffer_size"`
}

// DefaultConfig returns a complete, runnable configuration matching
// spec.md §4's stated defaults (K = 4 detectors at downscale factors
// 1, 2, 4, 8; streamer bound to localhost:2343).
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "localhost:2343",
		RingSlots:  128,
		Detectors: DetectorsConfig{
			Downscales:         []int{1, 2, 4, 8},
			OutboundBufferSize: 64,
		},
		CameraProbeBound: 16,
	}
}

// LoadConfig reads path as YAML and unmarshals it on top of
// DefaultConfig, so a config file only needs to specify the fields it
// overrides.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to deserialize config: %w", err)
	}

	return cfg, nil
}
