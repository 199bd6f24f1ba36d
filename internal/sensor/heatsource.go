package sensor

import (
	"time"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

// WithHeatSource wraps a sensor so every measurement additionally
// reports a constant extra heat source (e.g. self-heating of nearby
// components), which the engine uses for temperature compensation.
func WithHeatSource(inner engine.Sensor, offsetCelsius float32) engine.Sensor {
	return &heatSourceSensor{inner: inner, offset: offsetCelsius}
}

type heatSourceSensor struct {
	inner  engine.Sensor
	offset float32
}

func (s *heatSourceSensor) StartMeasurement(settings engine.MeasurementSettings) (time.Duration, error) {
	return s.inner.StartMeasurement(settings)
}

func (s *heatSourceSensor) GetMeasurement() ([]engine.Input, error) {
	readings, err := s.inner.GetMeasurement()
	if err != nil {
		return nil, err
	}
	return append(readings, engine.Input{
		Sensor: engine.InputHeatSource,
		Signal: s.offset,
	}), nil
}
