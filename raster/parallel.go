package raster

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/strips"
)

// ErrFrameSuperseded is returned when a newer frame generation started while
// strips were being generated; the stale output is discarded, never merged.
var ErrFrameSuperseded = errors.New("raster: frame superseded during generation")

// WorkerPool runs band-generation tasks on a fixed set of goroutines.
//
// Each worker primarily pulls from its own queue but steals from others when
// idle, which balances load when some bands carry far more geometry than
// others.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range p.workQueues {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workQueues {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work round-robin across workers and waits for all
// of it to complete. If the pool is closed, this is a no-op.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(work))

	for i, fn := range work {
		workerID := i % p.workers
		workFn := fn

		wrapped := func() {
			defer completionWG.Done()
			workFn()
		}

		select {
		case p.workQueues[workerID] <- wrapped:
		case <-p.done:
			completionWG.Done()
		}
	}

	completionWG.Wait()
}

// Close gracefully shuts down the pool: no new work is accepted, queued work
// completes, then workers exit. Safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// bandResult is one band's private output before the ordered merge.
type bandResult struct {
	strips []strips.Strip
	alphas *strips.AlphaBuffer
}

// GenerateFrame generates a complete frame from the tiler's bands, fanning
// the band range out over the pool and merging per-band output in ascending
// row order. ColIdx values are rebased during the merge, so the returned
// frame indexes a single contiguous alpha buffer.
//
// fence may be nil. When set, generation names the frame being built: if the
// fence has advanced past it by the time all bands complete, the output is
// discarded and ErrFrameSuperseded is returned, so a stale frame's strips
// are never partially applied.
func GenerateFrame(
	pool *WorkerPool,
	t *Tiler,
	g *Generator,
	paint strips.Paint,
	payload uint32,
	fence *strips.FrameFence,
	generation uint64,
) (*strips.Frame, error) {
	numBands := t.NumBands()
	results := make([]bandResult, numBands)

	if pool == nil || pool.Workers() <= 1 || numBands <= 1 {
		for i := 0; i < numBands; i++ {
			generateBandResult(t, g, paint, payload, i, &results[i])
		}
	} else {
		work := make([]func(), numBands)
		for i := 0; i < numBands; i++ {
			bandIdx := i
			work[i] = func() {
				generateBandResult(t, g, paint, payload, bandIdx, &results[bandIdx])
			}
		}
		pool.ExecuteAll(work)
	}

	if fence != nil && fence.Superseded(generation) {
		return nil, ErrFrameSuperseded
	}

	totalStrips := 0
	totalAlpha := 0
	for i := range results {
		totalStrips += len(results[i].strips)
		if results[i].alphas != nil {
			totalAlpha += results[i].alphas.Len()
		}
	}

	frame := &strips.Frame{
		Strips:     make([]strips.Strip, 0, totalStrips),
		Alphas:     strips.NewAlphaBuffer(totalAlpha / strips.StripHeight),
		Generation: generation,
	}
	for i := range results {
		res := &results[i]
		if len(res.strips) == 0 {
			continue
		}
		base := frame.Alphas.Append(res.alphas.Bytes())
		for _, s := range res.strips {
			s.ColIdx += base
			frame.Strips = append(frame.Strips, s)
		}
	}

	strips.Logger().Debug("frame generated",
		"strips", len(frame.Strips),
		"alphaColumns", frame.Alphas.Columns(),
		"bands", numBands,
		"generation", generation)

	return frame, nil
}

func generateBandResult(
	t *Tiler,
	g *Generator,
	paint strips.Paint,
	payload uint32,
	band int,
	out *bandResult,
) {
	b := t.Band(band)
	if b.Empty() {
		return
	}
	out.alphas = strips.NewAlphaBuffer(64)
	out.strips = g.GenerateBand(b, paint, payload, out.alphas, nil)
}
