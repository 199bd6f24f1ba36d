package monitor

import (
	"context"
	"sync"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

// OutputWatch is a latest-value broadcast cell. The producer replaces
// the value without ever blocking; readers observe the newest completed
// value and can wait for a change. Versions increase strictly with
// every publication.
type OutputWatch struct {
	mu      sync.Mutex
	outputs []engine.Output
	version uint64
	changed chan struct{}
}

func newOutputWatch(initial []engine.Output) *OutputWatch {
	return &OutputWatch{
		outputs: initial,
		version: 1,
		changed: make(chan struct{}),
	}
}

func (w *OutputWatch) set(outputs []engine.Output) {
	w.mu.Lock()
	w.outputs = outputs
	w.version++
	close(w.changed)
	w.changed = make(chan struct{})
	w.mu.Unlock()
}

// Latest returns the newest published value and its version.
func (w *OutputWatch) Latest() ([]engine.Output, uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outputs, w.version
}

// Changed blocks until a value newer than since is published, then
// returns it. It returns ctx.Err when the context ends first.
func (w *OutputWatch) Changed(ctx context.Context, since uint64) ([]engine.Output, uint64, error) {
	for {
		w.mu.Lock()
		if w.version > since {
			outputs, version := w.outputs, w.version
			w.mu.Unlock()
			return outputs, version, nil
		}
		changed := w.changed
		w.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
}
