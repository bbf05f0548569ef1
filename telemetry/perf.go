package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one step of a simulation tick.
type Phase int

const (
	PhaseThink Phase = iota
	PhaseImpel
	PhaseGraze
	PhaseHabitat
	PhaseSelection
	numPhases
)

var phaseNames = [numPhases]string{"think", "impel", "graze", "habitat", "selection"}

// String returns the phase name used in logs and CSV headers.
func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

type perfSample struct {
	tick   time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector tracks tick timing over a rolling window.
type PerfCollector struct {
	samples     []perfSample
	writeIndex  int
	sampleCount int

	current    perfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 100
	}
	return &PerfCollector{samples: make([]perfSample, windowSize)}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = time.Now()
	p.current = perfSample{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	if p == nil {
		return
	}
	now := time.Now()
	p.endPhase(now)
	p.phaseStart = now
	p.phase = phase
	p.inPhase = true
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := time.Now()
	p.endPhase(now)
	p.current.tick = now.Sub(p.tickStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.sampleCount < len(p.samples) {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTick        time.Duration
	MinTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	// Share of the average tick spent in each phase, in percent.
	PhasePct [numPhases]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{}
	}

	var total, lo, hi time.Duration
	var phaseSum [numPhases]time.Duration
	for i := range p.sampleCount {
		s := p.samples[i]
		total += s.tick
		if i == 0 || s.tick < lo {
			lo = s.tick
		}
		hi = max(hi, s.tick)
		for ph, d := range s.phases {
			phaseSum[ph] += d
		}
	}

	stats := PerfStats{
		AvgTick: total / time.Duration(p.sampleCount),
		MinTick: lo,
		MaxTick: hi,
	}
	if total > 0 {
		stats.TicksPerSecond = float64(p.sampleCount) * float64(time.Second) / float64(total)
		for ph, d := range phaseSum {
			stats.PhasePct[ph] = float64(d) / float64(total) * 100
		}
	}
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Generation   int     `csv:"generation"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	ThinkPct     float64 `csv:"think_pct"`
	ImpelPct     float64 `csv:"impel_pct"`
	GrazePct     float64 `csv:"graze_pct"`
	HabitatPct   float64 `csv:"habitat_pct"`
	SelectionPct float64 `csv:"selection_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:   generation,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		ThinkPct:     s.PhasePct[PhaseThink],
		ImpelPct:     s.PhasePct[PhaseImpel],
		GrazePct:     s.PhasePct[PhaseGraze],
		HabitatPct:   s.PhasePct[PhaseHabitat],
		SelectionPct: s.PhasePct[PhaseSelection],
	}
}
