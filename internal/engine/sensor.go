package engine

import "time"

// MeasurementSettings carries the directive's hardware settings for one
// forced-mode acquisition.
type MeasurementSettings struct {
	// HeaterTemperature is the gas heater set point in °C.
	HeaterTemperature uint16
	// HeatingDuration is the heater-on time.
	HeatingDuration time.Duration
	// RunGas enables the gas resistance measurement.
	RunGas bool
	// AmbientTemperatureCelsius is the ambient temperature the heater
	// profile is computed against. The directive does not carry it; the
	// sensor driver fills it in.
	AmbientTemperatureCelsius float32

	PressureOversampling    uint8
	TemperatureOversampling uint8
	HumidityOversampling    uint8
}

// Sensor is the capability contract a physical sensor driver must
// satisfy. The adapter never calls GetMeasurement before a prior
// StartMeasurement.
type Sensor interface {
	// StartMeasurement configures the hardware and begins a forced-mode
	// acquisition. It returns the expected completion delay.
	StartMeasurement(settings MeasurementSettings) (time.Duration, error)

	// GetMeasurement returns the raw channel readings of the last
	// acquisition, or ErrWouldBlock while the acquisition window has
	// not yet elapsed.
	GetMeasurement() ([]Input, error)
}

func measurementSettingsFromDirective(s SensorSettings) MeasurementSettings {
	return MeasurementSettings{
		HeaterTemperature:       s.HeaterTemperature,
		HeatingDuration:         time.Duration(s.HeatingDuration) * time.Millisecond,
		RunGas:                  s.RunGas != 0,
		PressureOversampling:    s.PressureOversampling,
		TemperatureOversampling: s.TemperatureOversampling,
		HumidityOversampling:    s.HumidityOversampling,
	}
}
