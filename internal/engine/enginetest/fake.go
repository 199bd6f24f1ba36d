// Package enginetest provides a deterministic in-memory stand-in for
// the vendor fusion engine.
package enginetest

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

const (
	rateDisabled            = 65535.0
	rateMeasurementOnDemand = 0.0
)

// Fake implements engine.RawEngine. It tracks subscription gates,
// schedules measurements on a fixed period derived from the fastest
// subscribed rate, and echoes raw physical inputs back as the matching
// raw virtual outputs. Its state blob is a step counter, so state
// changes with every processed measurement like the real engine's.
type Fake struct {
	mu sync.Mutex

	// Scriptable failures, returned verbatim by the matching call.
	InitErr               error
	UpdateSubscriptionErr error
	SensorControlErr      error
	DoStepsErr            error

	// ForceNoTrigger makes every directive say "no measurement yet".
	ForceNoTrigger bool

	// RequiredOverride, when set, is returned verbatim from
	// UpdateSubscription instead of the derived settings.
	RequiredOverride []engine.SensorConfiguration

	// OutputOverride, when set, is returned verbatim from DoSteps.
	OutputOverride []engine.WireOutput

	subscriptions map[uint8]float32
	nextCallNS    int64
	periodNS      int64
	steps         uint64

	state  []byte
	config []byte

	// MaxOutputsHistory records the output buffer size of every DoSteps
	// call, newest last.
	MaxOutputsHistory []int

	// ResetOutputs records every ResetOutput call.
	ResetOutputs []uint8
}

var _ engine.RawEngine = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		subscriptions: make(map[uint8]float32),
		periodNS:      time.Second.Nanoseconds(),
	}
}

func (f *Fake) Init() error {
	return f.InitErr
}

func (f *Fake) Version() string {
	return "fake-2.4.0.0"
}

func (f *Fake) UpdateSubscription(requested []engine.SensorConfiguration) ([]engine.SensorConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpdateSubscriptionErr != nil {
		return nil, f.UpdateSubscriptionErr
	}
	for _, r := range requested {
		if r.SampleRate == rateDisabled {
			delete(f.subscriptions, r.SensorID)
		} else {
			f.subscriptions[r.SensorID] = r.SampleRate
		}
	}
	f.periodNS = f.fastestPeriodNS()

	if f.RequiredOverride != nil {
		return f.RequiredOverride, nil
	}
	required := make([]engine.SensorConfiguration, 0, 4)
	for _, id := range []engine.InputKind{
		engine.InputPressure, engine.InputHumidity,
		engine.InputTemperature, engine.InputGasResistor,
	} {
		required = append(required, engine.SensorConfiguration{
			SampleRate: f.fastestRate(),
			SensorID:   uint8(id),
		})
	}
	return required, nil
}

func (f *Fake) fastestRate() float32 {
	var fastest float32
	for _, rate := range f.subscriptions {
		if rate > fastest && rate != rateDisabled {
			fastest = rate
		}
	}
	return fastest
}

func (f *Fake) fastestPeriodNS() int64 {
	rate := f.fastestRate()
	if rate <= 0 {
		return time.Second.Nanoseconds()
	}
	return int64(float64(time.Second.Nanoseconds()) / float64(rate))
}

func (f *Fake) SensorControl(timestampNS int64) (engine.SensorSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SensorControlErr != nil {
		return engine.SensorSettings{}, f.SensorControlErr
	}

	settings := engine.SensorSettings{
		HeaterTemperature:       300,
		HeatingDuration:         100,
		RunGas:                  1,
		PressureOversampling:    4,
		TemperatureOversampling: 8,
		HumidityOversampling:    2,
	}
	if !f.ForceNoTrigger && timestampNS >= f.nextCallNS {
		settings.TriggerMeasurement = 1
		f.nextCallNS = timestampNS + f.periodNS
	}
	settings.NextCallNS = f.nextCallNS
	return settings, nil
}

// rawOutputForInput maps a physical channel to the raw virtual sensor
// that mirrors it.
func rawOutputForInput(id uint8) (engine.OutputKind, bool) {
	switch engine.InputKind(id) {
	case engine.InputTemperature:
		return engine.OutputRawTemperature, true
	case engine.InputPressure:
		return engine.OutputRawPressure, true
	case engine.InputHumidity:
		return engine.OutputRawHumidity, true
	case engine.InputGasResistor:
		return engine.OutputRawGas, true
	default:
		return 0, false
	}
}

func (f *Fake) DoSteps(inputs []engine.WireInput, maxOutputs int) ([]engine.WireOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.MaxOutputsHistory = append(f.MaxOutputsHistory, maxOutputs)
	if f.DoStepsErr != nil {
		return nil, f.DoStepsErr
	}
	f.steps++

	// Measurement-on-demand gates are consumed by this step.
	for id, rate := range f.subscriptions {
		if rate == rateMeasurementOnDemand {
			delete(f.subscriptions, id)
		}
	}

	if f.OutputOverride != nil {
		return f.OutputOverride, nil
	}

	var timestamp int64
	if len(inputs) > 0 {
		timestamp = inputs[0].TimestampNS
	}
	outputs := make([]engine.WireOutput, 0, maxOutputs)
	for _, in := range inputs {
		raw, ok := rawOutputForInput(in.SensorID)
		if !ok {
			continue
		}
		if _, subscribed := f.subscriptions[uint8(raw)]; !subscribed {
			continue
		}
		if len(outputs) >= maxOutputs {
			break
		}
		outputs = append(outputs, engine.WireOutput{
			TimestampNS:      timestamp,
			Signal:           in.Signal,
			SignalDimensions: 1,
			SensorID:         uint8(raw),
			Accuracy:         uint8(engine.AccuracyHigh),
		})
	}
	return outputs, nil
}

func (f *Fake) GetState() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != nil {
		out := make([]byte, len(f.state))
		copy(out, f.state)
		return out, nil
	}
	state := make([]byte, 12)
	copy(state, "FKST")
	binary.LittleEndian.PutUint64(state[4:], f.steps)
	return state, nil
}

func (f *Fake) SetState(state []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(state) == 0 || len(state) > engine.MaxStateBlobSize {
		return engine.ErrStateInvalidLength
	}
	// Blobs produced by GetState restore the step counter; anything
	// else is kept verbatim and echoed back.
	if len(state) == 12 && string(state[:4]) == "FKST" {
		f.steps = binary.LittleEndian.Uint64(state[4:])
		f.state = nil
		return nil
	}
	f.state = make([]byte, len(state))
	copy(f.state, state)
	return nil
}

func (f *Fake) GetConfiguration() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]byte, len(f.config))
	copy(out, f.config)
	return out, nil
}

func (f *Fake) SetConfiguration(config []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(config) == 0 {
		return engine.ErrConfigEmpty
	}
	if len(config) > engine.MaxPropertyBlobSize {
		return engine.ErrConfigInsufficientBuffer
	}
	f.config = make([]byte, len(config))
	copy(f.config, config)
	return nil
}

func (f *Fake) ResetOutput(sensor uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ResetOutputs = append(f.ResetOutputs, sensor)
	return nil
}

// Steps reports how many fusion steps have been processed.
func (f *Fake) Steps() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.steps
}
