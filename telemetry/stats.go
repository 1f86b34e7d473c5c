// Package telemetry aggregates per-frame engine events into windowed
// statistics and writes them to CSV for offline analysis.
package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// WindowStats is one row of telemetry.csv: aggregated engine activity over
// a fixed window of ticks.
type WindowStats struct {
	WindowEnd    int64   `csv:"window_end_tick"`
	Particles    int     `csv:"particles"`
	Respawns     int     `csv:"respawns"`
	BoundaryHits int     `csv:"boundary_hits"`
	SinkRespawns int     `csv:"sink_respawns"`
	HopTruncated int     `csv:"hop_truncated"`
	MeanSpeed    float64 `csv:"mean_speed"`
	SpeedStdDev  float64 `csv:"speed_stddev"`
	MaxSpeed     float64 `csv:"max_speed"`
	StepMicros   float64 `csv:"step_micros"`
}

// Collector accumulates frame events until a window fills, then emits a
// WindowStats row.
type Collector struct {
	windowTicks int
	frames      int

	respawns     int
	boundaryHits int
	sinkRespawns int
	hopTruncated int
	stepMicros   float64

	speeds []float64
}

// NewCollector creates a collector that emits every windowTicks frames.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// Record adds one frame's events. Speeds are sampled, not copied: only the
// final frame of a window contributes, which is enough for a trend line
// and avoids buffering every particle every frame.
func (c *Collector) Record(respawns, boundaryHits, sinkRespawns, hopTruncated int, stepMicros float64, speeds []float64) {
	c.frames++
	c.respawns += respawns
	c.boundaryHits += boundaryHits
	c.sinkRespawns += sinkRespawns
	c.hopTruncated += hopTruncated
	c.stepMicros += stepMicros

	if c.frames == c.windowTicks {
		c.speeds = append(c.speeds[:0], speeds...)
	}
}

// Flush returns the completed window's stats and resets the collector.
// ok is false while the window is still filling.
func (c *Collector) Flush(tick int64) (WindowStats, bool) {
	if c.frames < c.windowTicks {
		return WindowStats{}, false
	}

	ws := WindowStats{
		WindowEnd:    tick,
		Particles:    len(c.speeds),
		Respawns:     c.respawns,
		BoundaryHits: c.boundaryHits,
		SinkRespawns: c.sinkRespawns,
		HopTruncated: c.hopTruncated,
		StepMicros:   c.stepMicros / float64(c.frames),
	}
	if len(c.speeds) > 0 {
		ws.MeanSpeed = stat.Mean(c.speeds, nil)
		ws.SpeedStdDev = stat.StdDev(c.speeds, nil)
		for _, s := range c.speeds {
			if s > ws.MaxSpeed {
				ws.MaxSpeed = s
			}
		}
	}

	c.frames = 0
	c.respawns = 0
	c.boundaryHits = 0
	c.sinkRespawns = 0
	c.hopTruncated = 0
	c.stepMicros = 0
	return ws, true
}
