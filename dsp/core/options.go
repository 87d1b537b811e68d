package core

import (
	"fmt"
	"math"
)

// StreamConfig describes the stream a processor is prepared for: the host
// sample rate and the largest block it will be handed per call.
type StreamConfig struct {
	SampleRate   float64
	MaxBlockSize int
}

// StreamOption mutates a StreamConfig.
type StreamOption func(*StreamConfig)

// DefaultStreamConfig returns the settings used when a caller does not
// specify a stream.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		SampleRate:   48000,
		MaxBlockSize: 512,
	}
}

// WithSampleRate sets the stream sample rate. Non-positive values are ignored.
func WithSampleRate(sampleRate float64) StreamOption {
	return func(cfg *StreamConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithMaxBlockSize sets the largest block size. Non-positive values are ignored.
func WithMaxBlockSize(blockSize int) StreamOption {
	return func(cfg *StreamConfig) {
		if blockSize > 0 {
			cfg.MaxBlockSize = blockSize
		}
	}
}

// ApplyStreamOptions applies zero or more options to the default config.
func ApplyStreamOptions(opts ...StreamOption) StreamConfig {
	cfg := DefaultStreamConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether the config describes a usable stream.
func (c StreamConfig) Validate() error {
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("stream sample rate must be > 0 and finite: %f", c.SampleRate)
	}
	if c.MaxBlockSize <= 0 {
		return fmt.Errorf("stream max block size must be > 0: %d", c.MaxBlockSize)
	}
	return nil
}
