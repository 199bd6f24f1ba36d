// Package engine drives the vendor signal-fusion engine through its
// native call protocol. The Engine handle is the single point of
// contact with the fusion library: it owns the process-wide instance
// lock, translates between wire records and domain types and keeps the
// subscription bookkeeping the engine itself does not expose.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/clock"
)

// The fusion library keeps global state, so at most one live Engine may
// exist per process. The flag is acquired with a compare-and-swap in
// Open and released unconditionally by Close.
var engineInUse atomic.Bool

// Engine is the handle to the process-wide fusion engine instance.
// It is not safe for concurrent use; the monitor owns it for the
// lifetime of the measurement loop.
type Engine struct {
	raw    RawEngine
	sensor Sensor
	clk    clock.Clock
	logger *zap.Logger

	subscribed map[OutputKind]struct{}
	oneShot    map[OutputKind]struct{}

	nextMeasurementNS  int64
	measurementStarted bool
	closed             bool
}

// Open acquires the process-wide engine lock and initializes the
// fusion engine. It fails with ErrEngineInUse while another handle is
// live. The returned handle must be released with Close.
func Open(raw RawEngine, sensor Sensor, clk clock.Clock, logger *zap.Logger) (*Engine, error) {
	if !engineInUse.CompareAndSwap(false, true) {
		return nil, ErrEngineInUse
	}
	if err := raw.Init(); err != nil {
		engineInUse.Store(false)
		return nil, fmt.Errorf("initializing fusion engine: %w", err)
	}
	return &Engine{
		raw:        raw,
		sensor:     sensor,
		clk:        clk,
		logger:     logger,
		subscribed: make(map[OutputKind]struct{}),
		oneShot:    make(map[OutputKind]struct{}),
	}, nil
}

// Close releases the process-wide engine lock. It is idempotent and
// must be called exactly once per successful Open, on every exit path.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	engineInUse.Store(false)
}

// Version reports the fusion engine's version string.
func (e *Engine) Version() string {
	return e.raw.Version()
}

// UpdateSubscription requests the given virtual sensors at the given
// rates and returns the physical sensor settings the engine now
// requires. Required entries with an unknown sensor id are dropped and
// logged; the engine occasionally reports ids outside the documented
// range.
func (e *Engine) UpdateSubscription(requests []SubscriptionRequest) ([]RequiredSensorSetting, error) {
	if len(requests) > MaxSubscriptionSlots {
		return nil, ErrArgumentListTooLong
	}

	requested := make([]SensorConfiguration, 0, len(requests))
	for _, req := range requests {
		rate, err := req.SampleRate.ToWire()
		if err != nil {
			return nil, err
		}
		requested = append(requested, SensorConfiguration{
			SampleRate: rate,
			SensorID:   uint8(req.Sensor),
		})
	}

	required, err := e.raw.UpdateSubscription(requested)
	if err != nil {
		return nil, err
	}

	for _, req := range requests {
		switch req.SampleRate {
		case SampleRateDisabled:
			delete(e.subscribed, req.Sensor)
			delete(e.oneShot, req.Sensor)
		case SampleRateUlpMeasurementOnDemand:
			e.oneShot[req.Sensor] = struct{}{}
		default:
			e.subscribed[req.Sensor] = struct{}{}
		}
	}

	settings := make([]RequiredSensorSetting, 0, len(required))
	for _, r := range required {
		kind, err := InputKindFromWire(r.SensorID)
		if err != nil {
			e.logger.Warn("Dropping required sensor setting with unknown id",
				zap.Uint8("sensor_id", r.SensorID))
			continue
		}
		settings = append(settings, RequiredSensorSetting{
			Sensor:     kind,
			SampleRate: r.SampleRate,
		})
	}
	return settings, nil
}

// StartNextMeasurement queries the engine's directive for the current
// timestamp and, if the directive asks for a measurement, triggers the
// sensor. It returns the sensor's profile duration, or ErrWouldBlock
// when no measurement is due yet.
func (e *Engine) StartNextMeasurement() (time.Duration, error) {
	settings, err := e.raw.SensorControl(e.clk.TimestampNS())
	if err != nil {
		return 0, err
	}
	e.nextMeasurementNS = settings.NextCallNS

	if settings.TriggerMeasurement == 0 {
		return 0, ErrWouldBlock
	}

	duration, err := e.sensor.StartMeasurement(measurementSettingsFromDirective(settings))
	if err != nil {
		return 0, &SensorError{Err: err}
	}
	e.measurementStarted = true
	return duration, nil
}

// ProcessLastMeasurement polls the sensor for the completed reading and
// feeds it through the fusion step. It returns ErrWouldBlock while the
// acquisition window has not elapsed. Unconvertible outputs are dropped
// and logged. Calling this before any StartNextMeasurement is a
// programmer error and panics.
func (e *Engine) ProcessLastMeasurement() ([]Output, error) {
	if !e.measurementStarted {
		panic("engine: ProcessLastMeasurement requires a prior StartNextMeasurement")
	}

	readings, err := e.sensor.GetMeasurement()
	if err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return nil, ErrWouldBlock
		}
		return nil, &SensorError{Err: err}
	}

	timestamp := e.clk.TimestampNS()
	inputs := make([]WireInput, 0, len(readings))
	for _, r := range readings {
		inputs = append(inputs, WireInput{
			TimestampNS:      timestamp,
			Signal:           r.Signal,
			SignalDimensions: 1,
			SensorID:         uint8(r.Sensor),
		})
	}

	maxOutputs := len(e.subscribed)
	for kind := range e.oneShot {
		if _, ok := e.subscribed[kind]; !ok {
			maxOutputs++
		}
	}

	wireOutputs, err := e.raw.DoSteps(inputs, maxOutputs)
	if err != nil {
		return nil, err
	}
	// One-shot requests are single-use; the step consumed them.
	clear(e.oneShot)

	outputs := make([]Output, 0, len(wireOutputs))
	for _, w := range wireOutputs {
		kind, err := OutputKindFromWire(w.SensorID)
		if err != nil {
			e.logger.Warn("Dropping output with unknown sensor id",
				zap.Uint8("sensor_id", w.SensorID))
			continue
		}
		accuracy, err := AccuracyFromWire(w.Accuracy)
		if err != nil {
			e.logger.Warn("Dropping output with invalid accuracy",
				zap.Stringer("sensor", kind),
				zap.Uint8("accuracy", w.Accuracy))
			continue
		}
		outputs = append(outputs, Output{
			TimestampNS: w.TimestampNS,
			Signal:      float64(w.Signal),
			Sensor:      kind,
			Accuracy:    accuracy,
		})
	}
	return outputs, nil
}

// NextMeasurementTime returns the timestamp at which the engine wants
// the next StartNextMeasurement call, as recorded from the last
// directive.
func (e *Engine) NextMeasurementTime() int64 {
	return e.nextMeasurementNS
}

// GetState pulls the engine's opaque state blob.
func (e *Engine) GetState() ([]byte, error) {
	return e.raw.GetState()
}

// SetState restores a previously pulled state blob.
func (e *Engine) SetState(state []byte) error {
	return e.raw.SetState(state)
}

// GetConfiguration pulls the engine's opaque configuration blob.
func (e *Engine) GetConfiguration() ([]byte, error) {
	return e.raw.GetConfiguration()
}

// SetConfiguration loads an opaque configuration blob.
func (e *Engine) SetConfiguration(config []byte) error {
	return e.raw.SetConfiguration(config)
}

// ResetOutput clears the engine-internal history of one virtual sensor,
// forcing it to re-stabilize.
func (e *Engine) ResetOutput(sensor OutputKind) error {
	return e.raw.ResetOutput(uint8(sensor))
}
