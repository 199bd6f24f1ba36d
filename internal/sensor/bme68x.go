// Package sensor adapts a register-level BME68x driver to the
// measurement capability the fusion engine adapter consumes. The bus
// access itself stays behind the ForcedModeController contract; this
// package only handles settings translation and acquisition timing.
package sensor

import (
	"time"

	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/clock"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

// Data holds the four raw channels of one completed acquisition.
type Data struct {
	// TemperatureCelsius in °C.
	TemperatureCelsius float32
	// PressureHPa in hPa.
	PressureHPa float32
	// HumidityPercent in % relative humidity.
	HumidityPercent float32
	// GasResistanceOhm in Ω.
	GasResistanceOhm float32
}

// ForcedModeController is the contract of a register-level BME68x
// driver: apply a settings profile and kick off one forced-mode
// acquisition, then read the resulting data registers.
type ForcedModeController interface {
	// Trigger writes the oversampling and heater profile, switches the
	// device into forced mode and returns the expected measurement
	// duration of that profile.
	Trigger(settings engine.MeasurementSettings) (time.Duration, error)

	// ReadData reads the data registers of the completed acquisition.
	ReadData() (Data, error)
}

// BME68x implements engine.Sensor on top of a ForcedModeController,
// tracking the acquisition window against the injected clock.
type BME68x struct {
	ctrl   ForcedModeController
	clk    clock.Clock
	logger *zap.Logger

	ambientCelsius   float32
	availableAfterNS int64
	started          bool
}

var _ engine.Sensor = (*BME68x)(nil)

// NewBME68x wraps ctrl. initialAmbientCelsius seeds the heater
// profile's ambient temperature until the first measurement replaces
// it.
func NewBME68x(ctrl ForcedModeController, initialAmbientCelsius float32, clk clock.Clock, logger *zap.Logger) *BME68x {
	return &BME68x{ctrl: ctrl, ambientCelsius: initialAmbientCelsius, clk: clk, logger: logger}
}

func (b *BME68x) StartMeasurement(settings engine.MeasurementSettings) (time.Duration, error) {
	settings.AmbientTemperatureCelsius = b.ambientCelsius
	duration, err := b.ctrl.Trigger(settings)
	if err != nil {
		return 0, err
	}
	b.availableAfterNS = b.clk.TimestampNS() + duration.Nanoseconds()
	b.started = true
	b.logger.Debug("Forced-mode measurement triggered",
		zap.Uint16("heater_temperature", settings.HeaterTemperature),
		zap.Duration("heating_duration", settings.HeatingDuration),
		zap.Bool("run_gas", settings.RunGas),
		zap.Duration("profile_duration", duration))
	return duration, nil
}

func (b *BME68x) GetMeasurement() ([]engine.Input, error) {
	if !b.started {
		panic("sensor: GetMeasurement requires a prior StartMeasurement")
	}
	if b.clk.TimestampNS() < b.availableAfterNS {
		return nil, engine.ErrWouldBlock
	}
	data, err := b.ctrl.ReadData()
	if err != nil {
		return nil, err
	}
	b.ambientCelsius = data.TemperatureCelsius
	return []engine.Input{
		{Sensor: engine.InputTemperature, Signal: data.TemperatureCelsius},
		// The fusion engine takes pressure in Pa.
		{Sensor: engine.InputPressure, Signal: data.PressureHPa * 100},
		{Sensor: engine.InputHumidity, Signal: data.HumidityPercent},
		{Sensor: engine.InputGasResistor, Signal: data.GasResistanceOhm},
	}, nil
}
