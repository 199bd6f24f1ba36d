// Package monitor runs the measurement duty cycle: it asks the engine
// adapter when the next measurement is due, waits, triggers and
// collects the measurement, publishes the resulting outputs and
// periodically snapshots the engine state.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/clock"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
	"github.com/jgosmann/linux-bsec-exporter/internal/persist"
)

// autosaveInterval is the engine-clock time between periodic state
// snapshots.
const autosaveInterval = 60 * time.Second

// Monitor owns the engine adapter and the persistence store for the
// lifetime of the measurement loop. Ownership of both returns to the
// caller through Wait.
type Monitor struct {
	// Current publishes the outputs of every completed measurement.
	Current *OutputWatch

	eng    *engine.Engine
	store  persist.Store
	clk    clock.Clock
	logger *zap.Logger

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
	err          error
}

// Start restores persisted engine state if any exists, completes one
// measurement to seed the published value and then runs the duty cycle
// in the background until a fatal error or a shutdown request.
func Start(eng *engine.Engine, store persist.Store, clk clock.Clock, logger *zap.Logger) (*Monitor, error) {
	runID := uuid.New()
	m := &Monitor{
		eng:      eng,
		store:    store,
		clk:      clk,
		logger:   logger.With(zap.String("run_id", runID.String())),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	state, err := store.LoadState()
	if err != nil {
		return nil, fmt.Errorf("loading persisted state: %w", err)
	}
	if state == nil {
		m.logger.Info("No persisted state, cold start")
	} else {
		if err := eng.SetState(state); err != nil {
			return nil, fmt.Errorf("restoring persisted state: %w", err)
		}
		m.logger.Info("Persisted state restored", zap.Int("bytes", len(state)))
	}

	outputs, err := m.nextMeasurement()
	if err != nil {
		return nil, err
	}
	m.Current = newOutputWatch(outputs)

	m.logger.Info("Monitoring started")
	go m.loop()
	return m, nil
}

// RequestShutdown asks the loop to exit after the current step. Safe to
// call multiple times and from any goroutine.
func (m *Monitor) RequestShutdown() {
	m.shutdownOnce.Do(func() { close(m.shutdown) })
}

// Wait blocks until the loop has exited and returns ownership of the
// engine adapter and the store together with the first fatal error, if
// any.
func (m *Monitor) Wait() (*engine.Engine, persist.Store, error) {
	<-m.done
	return m.eng, m.store, m.err
}

func (m *Monitor) shutdownRequested() bool {
	select {
	case <-m.shutdown:
		return true
	default:
		return false
	}
}

func (m *Monitor) loop() {
	defer close(m.done)

	lastSave := m.clk.TimestampNS()
	for !m.shutdownRequested() {
		outputs, err := m.nextMeasurement()
		if err != nil {
			m.err = err
			m.logger.Error("Monitoring loop failed", zap.Error(err))
			return
		}
		m.Current.set(outputs)

		if m.clk.TimestampNS()-lastSave >= autosaveInterval.Nanoseconds() {
			lastSave = m.clk.TimestampNS()
			if err := m.saveState(); err != nil {
				m.err = err
				m.logger.Error("State autosave failed", zap.Error(err))
				return
			}
			m.logger.Debug("Engine state autosaved")
		}

		// Keep the cancellation check and other goroutines scheduled
		// even under a tight measurement cadence.
		runtime.Gosched()
	}

	if err := m.saveState(); err != nil {
		m.err = err
		m.logger.Error("Final state snapshot failed", zap.Error(err))
		return
	}
	m.logger.Info("Monitoring stopped")
}

// nextMeasurement runs one full duty cycle: sleep until the engine's
// next call time, trigger the measurement, wait out the sensor's
// profile duration and feed the readings through the fusion step.
func (m *Monitor) nextMeasurement() ([]engine.Output, error) {
	ctx := context.Background()
	for {
		sleep := m.eng.NextMeasurementTime() - m.clk.TimestampNS()
		if sleep > 0 {
			m.clk.Sleep(ctx, time.Duration(sleep))
		}

		duration, err := m.eng.StartNextMeasurement()
		if errors.Is(err, engine.ErrWouldBlock) {
			// The directive did not ask for a measurement yet; sleep
			// towards the updated next call time.
			runtime.Gosched()
			continue
		}
		if err != nil {
			return nil, err
		}
		m.clk.Sleep(ctx, duration)

		for {
			outputs, err := m.eng.ProcessLastMeasurement()
			if errors.Is(err, engine.ErrWouldBlock) {
				// The wait has essentially elapsed; busy-polling here
				// is bounded by clock granularity.
				runtime.Gosched()
				continue
			}
			return outputs, err
		}
	}
}

func (m *Monitor) saveState() error {
	state, err := m.eng.GetState()
	if err != nil {
		return fmt.Errorf("pulling engine state: %w", err)
	}
	if err := m.store.SaveState(state); err != nil {
		return fmt.Errorf("persisting engine state: %w", err)
	}
	return nil
}
