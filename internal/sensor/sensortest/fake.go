// Package sensortest provides a scripted fake physical sensor.
package sensortest

import (
	"sync"
	"time"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

// Fake implements engine.Sensor with scripted readings. Measurements
// complete immediately unless PendingPolls is set, in which case
// GetMeasurement reports ErrWouldBlock that many times first.
type Fake struct {
	mu sync.Mutex

	// Readings returned by GetMeasurement.
	Readings []engine.Input
	// ReadErr, when set, is returned by GetMeasurement instead.
	ReadErr error
	// StartErr, when set, is returned by StartMeasurement.
	StartErr error
	// ProfileDuration is returned from StartMeasurement.
	ProfileDuration time.Duration
	// PendingPolls is the number of GetMeasurement calls that report a
	// still-pending acquisition before readings become available.
	PendingPolls int

	startCalls   int
	lastSettings engine.MeasurementSettings
	pendingLeft  int
}

var _ engine.Sensor = (*Fake)(nil)

func New(readings []engine.Input) *Fake {
	return &Fake{
		Readings:        readings,
		ProfileDuration: 100 * time.Millisecond,
	}
}

func (f *Fake) StartMeasurement(settings engine.MeasurementSettings) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StartErr != nil {
		return 0, f.StartErr
	}
	f.startCalls++
	f.lastSettings = settings
	f.pendingLeft = f.PendingPolls
	return f.ProfileDuration, nil
}

func (f *Fake) GetMeasurement() ([]engine.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pendingLeft > 0 {
		f.pendingLeft--
		return nil, engine.ErrWouldBlock
	}
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	out := make([]engine.Input, len(f.Readings))
	copy(out, f.Readings)
	return out, nil
}

// StartCalls reports how many measurements have been triggered.
func (f *Fake) StartCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls
}

// LastSettings returns the settings of the most recent trigger.
func (f *Fake) LastSettings() engine.MeasurementSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSettings
}
