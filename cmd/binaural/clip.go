package main

import (
	"log/slog"

	"github.com/cwbudde/algo-binaural/dsp/effects/spatial"
)

// clipMonitor turns processor diagnostics into log lines. It warns on the
// first clipped block and then at most once per interval blocks.
type clipMonitor struct {
	logger   *slog.Logger
	interval uint64

	seen     uint64
	lastWarn uint64
	warned   bool
}

func newClipMonitor(logger *slog.Logger, interval uint64) *clipMonitor {
	return &clipMonitor{logger: logger, interval: max(interval, 1)}
}

// check inspects d and reports whether it logged.
func (c *clipMonitor) check(d spatial.Diagnostics) bool {
	if d.ClippedBlocks == c.seen {
		return false
	}
	c.seen = d.ClippedBlocks

	if c.warned && d.Blocks-c.lastWarn < c.interval {
		return false
	}
	c.warned = true
	c.lastWarn = d.Blocks

	c.logger.Warn("output is too loud",
		"peak", d.LastPeak,
		"clipped_blocks", d.ClippedBlocks,
		"clipped_samples", d.ClippedSamples,
		"block", d.Blocks)
	return true
}

// summary logs the totals at the end of a run.
func (c *clipMonitor) summary(d spatial.Diagnostics) {
	if d.ClippedBlocks == 0 {
		c.logger.Debug("no clipping", "blocks", d.Blocks)
		return
	}
	c.logger.Warn("clipping summary",
		"clipped_blocks", d.ClippedBlocks,
		"clipped_samples", d.ClippedSamples,
		"blocks", d.Blocks)
}
