package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/critters/critter"
)

// defaultParallelThreshold is the minimum population to think in parallel.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 64

// thinkChunk is a range of critters for one worker.
type thinkChunk struct {
	start, end int
}

// parallelState runs the think phase across a persistent worker pool.
// Critters own disjoint circuits and only read the habitat while
// thinking, so chunks never share mutable state.
type parallelState struct {
	critters   []*critter.Critter
	dispatched []int
	maxSignals int
	threshold  int
	numWorkers int

	// Worker pool channels
	workChan chan thinkChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState(workers, threshold, maxSignals int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	return &parallelState{
		numWorkers: workers,
		threshold:  threshold,
		maxSignals: maxSignals,
		critters:   make([]*critter.Critter, 0, 256),
		dispatched: make([]int, 0, 256),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan thinkChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.thinkRange(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

func (p *parallelState) thinkRange(i0, i1 int) {
	for i := i0; i < i1; i++ {
		p.dispatched[i] = p.critters[i].Think(p.maxSignals)
	}
}

// think runs one think step for every loaded critter, recording how many
// signals each dispatched.
func (p *parallelState) think() {
	n := len(p.critters)
	if cap(p.dispatched) < n {
		p.dispatched = make([]int, n)
	}
	p.dispatched = p.dispatched[:n]
	if n == 0 {
		return
	}

	if n < p.threshold || p.numWorkers == 1 {
		p.thinkRange(0, n)
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for start := 0; start < n; start += chunkSize {
		p.workChan <- thinkChunk{start: start, end: min(start+chunkSize, n)}
		dispatched++
	}
	for range dispatched {
		<-p.doneChan
	}
}
