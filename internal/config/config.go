// Package config loads pipeline configuration from JSON files. Fields are
// pointers so a partial config file only overrides what it names; the Get*
// accessors supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PipelineConfig is the root configuration for the capture pipeline and the
// actuator tooling. The same JSON schema serves cmd/mocap and cmd/actuator.
type PipelineConfig struct {
	// Tracking params
	MarkerCount         *int     `json:"marker_count,omitempty"`
	MaxPositionChangeMM *float64 `json:"max_position_change_mm,omitempty"`
	Matching            *string  `json:"matching,omitempty"` // "first-candidate" or "optimal"

	// Resampling params
	OriginRateHz *float64 `json:"origin_rate_hz,omitempty"`
	TargetRateHz *float64 `json:"target_rate_hz,omitempty"`

	// Capture cleaning params
	MetadataColumns *int `json:"metadata_columns,omitempty"`

	// Paths
	RawDir *string `json:"raw_dir,omitempty"`
	OutDir *string `json:"out_dir,omitempty"`
	DBPath *string `json:"db_path,omitempty"`

	// Actuator params
	SerialPort  *string `json:"serial_port,omitempty"`
	BaudRate    *int    `json:"baud_rate,omitempty"`
	ActuatorIDs []int   `json:"actuator_ids,omitempty"`
	LogInterval *string `json:"log_interval,omitempty"` // duration string like "100ms"
}

// Empty returns a PipelineConfig with all fields unset.
func Empty() *PipelineConfig {
	return &PipelineConfig{}
}

// Load reads a PipelineConfig from a JSON file. Fields omitted from the
// file retain their defaults, so partial configs are safe.
func Load(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that set configuration values are usable.
func (c *PipelineConfig) Validate() error {
	if c.MarkerCount != nil && *c.MarkerCount < 1 {
		return fmt.Errorf("marker_count must be at least 1, got %d", *c.MarkerCount)
	}
	if c.MaxPositionChangeMM != nil && *c.MaxPositionChangeMM <= 0 {
		return fmt.Errorf("max_position_change_mm must be positive, got %f", *c.MaxPositionChangeMM)
	}
	if c.OriginRateHz != nil && *c.OriginRateHz <= 0 {
		return fmt.Errorf("origin_rate_hz must be positive, got %f", *c.OriginRateHz)
	}
	if c.TargetRateHz != nil && *c.TargetRateHz <= 0 {
		return fmt.Errorf("target_rate_hz must be positive, got %f", *c.TargetRateHz)
	}
	if c.Matching != nil {
		switch *c.Matching {
		case "", "first-candidate", "optimal":
		default:
			return fmt.Errorf("matching must be \"first-candidate\" or \"optimal\", got %q", *c.Matching)
		}
	}
	if c.MetadataColumns != nil && *c.MetadataColumns < 0 {
		return fmt.Errorf("metadata_columns must be non-negative, got %d", *c.MetadataColumns)
	}
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}
	for _, id := range c.ActuatorIDs {
		if id < 0 || id > 255 {
			return fmt.Errorf("actuator id must fit one byte, got %d", id)
		}
	}
	if c.LogInterval != nil && *c.LogInterval != "" {
		if _, err := time.ParseDuration(*c.LogInterval); err != nil {
			return fmt.Errorf("invalid log_interval '%s': %w", *c.LogInterval, err)
		}
	}
	return nil
}

// GetMarkerCount returns the marker_count value or the default.
func (c *PipelineConfig) GetMarkerCount() int {
	if c.MarkerCount == nil {
		return 2
	}
	return *c.MarkerCount
}

// GetMaxPositionChangeMM returns the max_position_change_mm value or the default.
func (c *PipelineConfig) GetMaxPositionChangeMM() float64 {
	if c.MaxPositionChangeMM == nil {
		return 5.0
	}
	return *c.MaxPositionChangeMM
}

// GetMatching returns the matching policy name or the default.
func (c *PipelineConfig) GetMatching() string {
	if c.Matching == nil || *c.Matching == "" {
		return "first-candidate"
	}
	return *c.Matching
}

// GetOriginRateHz returns the origin_rate_hz value or the default.
func (c *PipelineConfig) GetOriginRateHz() float64 {
	if c.OriginRateHz == nil {
		return 60.0
	}
	return *c.OriginRateHz
}

// GetTargetRateHz returns the target_rate_hz value or the default.
func (c *PipelineConfig) GetTargetRateHz() float64 {
	if c.TargetRateHz == nil {
		return 100.0
	}
	return *c.TargetRateHz
}

// GetMetadataColumns returns the metadata_columns value or the default.
func (c *PipelineConfig) GetMetadataColumns() int {
	if c.MetadataColumns == nil {
		return 42
	}
	return *c.MetadataColumns
}

// GetRawDir returns the raw capture directory or the default.
func (c *PipelineConfig) GetRawDir() string {
	if c.RawDir == nil || *c.RawDir == "" {
		return "experiments/raw"
	}
	return *c.RawDir
}

// GetOutDir returns the output directory or the default.
func (c *PipelineConfig) GetOutDir() string {
	if c.OutDir == nil || *c.OutDir == "" {
		return "experiments/out"
	}
	return *c.OutDir
}

// GetDBPath returns the run database path or the default.
func (c *PipelineConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "motion_runs.db"
	}
	return *c.DBPath
}

// GetSerialPort returns the actuator serial port or the default.
func (c *PipelineConfig) GetSerialPort() string {
	if c.SerialPort == nil || *c.SerialPort == "" {
		return "/dev/ttyUSB0"
	}
	return *c.SerialPort
}

// GetBaudRate returns the actuator baud rate or the default.
func (c *PipelineConfig) GetBaudRate() int {
	if c.BaudRate == nil {
		return 921600
	}
	return *c.BaudRate
}

// GetLogInterval parses and returns the actuator log interval.
func (c *PipelineConfig) GetLogInterval() time.Duration {
	if c.LogInterval == nil || *c.LogInterval == "" {
		return 100 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.LogInterval)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}
