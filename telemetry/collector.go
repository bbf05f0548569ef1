package telemetry

// Collector accumulates per-critter samples within one generation and
// produces GenerationStats.
type Collector struct {
	signalCap int

	// Think counters for the current generation
	ticks          int
	signals        int
	saturatedTicks int

	// Per-critter samples, taken at the end of the run
	scores      []float64
	units       []float64
	connections []float64
	feedback    int
	mutants     int
}

// NewCollector creates a stats collector. signalCap is the per-tick think
// budget; a critter that uses all of it counts as saturated. Zero disables
// saturation tracking.
func NewCollector(signalCap int) *Collector {
	return &Collector{signalCap: signalCap}
}

// RecordTick marks the end of one simulation tick.
func (c *Collector) RecordTick() {
	c.ticks++
}

// RecordThink records the signals one critter dispatched in one tick.
func (c *Collector) RecordThink(dispatched int) {
	c.signals += dispatched
	if c.signalCap > 0 && dispatched >= c.signalCap {
		c.saturatedTicks++
	}
}

// CritterSample describes one critter at the end of a run.
type CritterSample struct {
	Score       float64
	Units       int
	Connections int
	Feedback    bool
	Mutant      bool
}

// Sample adds one critter to the current generation.
func (c *Collector) Sample(s CritterSample) {
	c.scores = append(c.scores, s.Score)
	c.units = append(c.units, float64(s.Units))
	c.connections = append(c.connections, float64(s.Connections))
	if s.Feedback {
		c.feedback++
	}
	if s.Mutant {
		c.mutants++
	}
}

// Flush produces GenerationStats and resets for the next generation.
func (c *Collector) Flush(generation, survivors int, fitnessLayerTotal float64) GenerationStats {
	mean, std, lo, p50, hi := ComputeFitnessStats(c.scores)
	unitMean, _, _, _, _ := ComputeFitnessStats(c.units)
	connMean, _, _, _, _ := ComputeFitnessStats(c.connections)

	var perTick float64
	if c.ticks > 0 {
		perTick = float64(c.signals) / float64(c.ticks)
	}

	stats := GenerationStats{
		Generation: generation,
		Population: len(c.scores),
		Survivors:  survivors,

		FitnessMean: mean,
		FitnessStd:  std,
		FitnessMin:  lo,
		FitnessP50:  p50,
		FitnessMax:  hi,

		MeanUnits:        unitMean,
		MeanConnections:  connMean,
		FeedbackCritters: c.feedback,

		SignalsPerTick: perTick,
		SaturatedTicks: c.saturatedTicks,

		Mutants: c.mutants,

		FitnessLayerTotal: fitnessLayerTotal,
	}

	c.ticks = 0
	c.signals = 0
	c.saturatedTicks = 0
	c.scores = c.scores[:0]
	c.units = c.units[:0]
	c.connections = c.connections[:0]
	c.feedback = 0
	c.mutants = 0

	return stats
}
