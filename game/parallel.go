package game

import (
	"runtime"
	"sync"
)

// parallelIslands is the minimum island count to step islands in parallel.
// A single island is never split, since its agents share one grid.
const parallelIslands = 2

// stepChunk is a range of islands for one worker, advanced by ticks.
type stepChunk struct {
	islands []*Island
	ticks   int
	done    *sync.WaitGroup
}

// workerPool advances islands in parallel. Islands share no state, so the
// result is the same as stepping them one after another.
type workerPool struct {
	numWorkers int

	workChan chan stepChunk // closed by stopWorkers
	wg       sync.WaitGroup // tracks live workers
	running  bool
}

// newWorkerPool creates a pool with the given worker count (0 = GOMAXPROCS).
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

// startWorkers launches the persistent worker goroutines on first use.
func (p *workerPool) startWorkers() {
	if p.running {
		return
	}
	p.workChan = make(chan stepChunk, p.numWorkers)
	p.running = true
	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers closes the work queue and waits for the workers to drain it.
func (p *workerPool) stopWorkers() {
	if !p.running {
		return
	}
	close(p.workChan)
	p.wg.Wait()
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for chunk := range p.workChan {
		for _, is := range chunk.islands {
			is.Step(chunk.ticks)
		}
		chunk.done.Done()
	}
}

// stepAll advances every island by ticks and returns when all are done.
func (p *workerPool) stepAll(islands []*Island, ticks int) {
	n := len(islands)
	if p.numWorkers <= 1 || n < parallelIslands {
		for _, is := range islands {
			is.Step(ticks)
		}
		return
	}

	p.startWorkers()

	var done sync.WaitGroup
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		done.Add(1)
		p.workChan <- stepChunk{islands: islands[start:end], ticks: ticks, done: &done}
	}
	done.Wait()
}
