package loader

import (
	"Floodlight/internal/logger"

	"go.uber.org/zap"
)

type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Future is a model load running in the background. The render loop polls it
// once per frame and never blocks on it.
type Future struct {
	Path string

	done  chan struct{}
	model *Model
	err   error
}

// LoadAsync starts loading path on its own goroutine. Only CPU side work
// happens there; GPU buffers are created on first draw.
func LoadAsync(path string) *Future {
	return loadAsync(path, Load)
}

func loadAsync(path string, load func(string) (*Model, error)) *Future {
	f := &Future{Path: path, done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.model, f.err = load(path)
		if f.err != nil {
			logger.Log.Error("Model load failed", zap.String("path", path), zap.Error(f.err))
		}
	}()
	return f
}

// State reports the load state without blocking.
func (f *Future) State() State {
	select {
	case <-f.done:
		if f.err != nil {
			return Failed
		}
		return Ready
	default:
		return Loading
	}
}

// Done is closed once the load finished, whatever the outcome.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the load finished.
func (f *Future) Wait() (*Model, error) {
	<-f.done
	return f.model, f.err
}

// Model returns the loaded model, or nil while loading or after a failure.
func (f *Future) Model() *Model {
	if f.State() != Ready {
		return nil
	}
	return f.model
}

// Err returns the load error once the load failed.
func (f *Future) Err() error {
	if f.State() != Failed {
		return nil
	}
	return f.err
}
