// Package pool runs small batches of CPU-bound work across a fixed set
// of goroutines. A nil *Pool is valid and runs everything serially on
// the calling goroutine.
package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines fed closures over a shared
// channel. One batch operation runs at a time.
type Pool struct {
	jobs    chan func()
	workers int
}

// NewPool starts a pool with the given number of workers, or one per
// CPU when count <= 0.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		jobs:    make(chan func()),
		workers: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// TearDown stops the workers. The pool cannot be used afterwards.
func (p *Pool) TearDown() {
	close(p.jobs)
}

// Search calls f repeatedly until count calls have returned non-nil,
// and returns those results. f must be safe for concurrent use.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	if p == nil {
		return searchSerial(count, f)
	}

	results := make([]interface{}, count)
	remaining := int64(count)
	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		p.jobs <- func() {
			defer wg.Done()
			for atomic.LoadInt64(&remaining) > 0 {
				res := f()
				if res == nil {
					continue
				}
				// Claim a slot; a negative slot means the batch
				// finished while we were searching.
				slot := atomic.AddInt64(&remaining, -1)
				if slot < 0 {
					return
				}
				results[slot] = res
			}
		}
	}
	wg.Wait()
	return results
}

// Parallelize returns [f(0), f(1), ..., f(count-1)], evaluated across
// the workers. f must be safe for concurrent use.
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	if p == nil {
		return parallelizeSerial(count, f)
	}

	results := make([]interface{}, count)
	var wg sync.WaitGroup
	wg.Add(count)
	// Feed from a separate goroutine: with fewer workers than jobs the
	// sends block, and the collector must already be waiting.
	go func() {
		for i := 0; i < count; i++ {
			i := i
			p.jobs <- func() {
				results[i] = f(i)
				wg.Done()
			}
		}
	}()
	wg.Wait()
	return results
}

func searchSerial(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	for i := range results {
		for results[i] == nil {
			results[i] = f()
		}
	}
	return results
}

func parallelizeSerial(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	for i := range results {
		results[i] = f(i)
	}
	return results
}

// LockedReader serializes reads on an underlying reader so concurrent
// workers can share one entropy source.
type LockedReader struct {
	reader io.Reader
	mtx    sync.Mutex
}

// NewLockedReader wraps r.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader. Concurrent callers race for order, but
// never observe the same bytes twice.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.reader.Read(p)
}
