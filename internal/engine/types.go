package engine

import "fmt"

// InputKind identifies a physical sensor channel consumed by the fusion
// engine.
type InputKind uint8

const (
	InputPressure               InputKind = 1
	InputHumidity               InputKind = 2
	InputTemperature            InputKind = 3
	InputGasResistor            InputKind = 4
	InputHeatSource             InputKind = 14
	InputDisableBaselineTracker InputKind = 23
)

// InputKindFromWire maps an engine wire code to an InputKind. Unknown
// codes are an error, never a default.
func InputKindFromWire(code uint8) (InputKind, error) {
	switch InputKind(code) {
	case InputPressure, InputHumidity, InputTemperature, InputGasResistor,
		InputHeatSource, InputDisableBaselineTracker:
		return InputKind(code), nil
	default:
		return 0, &ConversionError{Field: "physical sensor id", Value: int64(code)}
	}
}

func (k InputKind) String() string {
	switch k {
	case InputPressure:
		return "pressure"
	case InputHumidity:
		return "humidity"
	case InputTemperature:
		return "temperature"
	case InputGasResistor:
		return "gas_resistor"
	case InputHeatSource:
		return "heat_source"
	case InputDisableBaselineTracker:
		return "disable_baseline_tracker"
	default:
		return fmt.Sprintf("input(%d)", uint8(k))
	}
}

// OutputKind identifies a virtual sensor the fusion engine can emit.
type OutputKind uint8

const (
	OutputIaq                              OutputKind = 1
	OutputStaticIaq                        OutputKind = 2
	OutputCo2Equivalent                    OutputKind = 3
	OutputBreathVocEquivalent              OutputKind = 4
	OutputRawTemperature                   OutputKind = 6
	OutputRawPressure                      OutputKind = 7
	OutputRawHumidity                      OutputKind = 8
	OutputRawGas                           OutputKind = 9
	OutputStabilizationStatus              OutputKind = 12
	OutputRunInStatus                      OutputKind = 13
	OutputSensorHeatCompensatedTemperature OutputKind = 14
	OutputSensorHeatCompensatedHumidity    OutputKind = 15
	OutputDebugCompensatedGas              OutputKind = 18
	OutputGasPercentage                    OutputKind = 21
)

// OutputKindFromWire maps an engine wire code to an OutputKind.
func OutputKindFromWire(code uint8) (OutputKind, error) {
	switch OutputKind(code) {
	case OutputIaq, OutputStaticIaq, OutputCo2Equivalent, OutputBreathVocEquivalent,
		OutputRawTemperature, OutputRawPressure, OutputRawHumidity, OutputRawGas,
		OutputStabilizationStatus, OutputRunInStatus,
		OutputSensorHeatCompensatedTemperature, OutputSensorHeatCompensatedHumidity,
		OutputDebugCompensatedGas, OutputGasPercentage:
		return OutputKind(code), nil
	default:
		return 0, &ConversionError{Field: "virtual sensor id", Value: int64(code)}
	}
}

func (k OutputKind) String() string {
	switch k {
	case OutputIaq:
		return "iaq"
	case OutputStaticIaq:
		return "static_iaq"
	case OutputCo2Equivalent:
		return "co2_equivalent"
	case OutputBreathVocEquivalent:
		return "breath_voc_equivalent"
	case OutputRawTemperature:
		return "raw_temperature"
	case OutputRawPressure:
		return "raw_pressure"
	case OutputRawHumidity:
		return "raw_humidity"
	case OutputRawGas:
		return "raw_gas"
	case OutputStabilizationStatus:
		return "stabilization_status"
	case OutputRunInStatus:
		return "run_in_status"
	case OutputSensorHeatCompensatedTemperature:
		return "sensor_heat_compensated_temperature"
	case OutputSensorHeatCompensatedHumidity:
		return "sensor_heat_compensated_humidity"
	case OutputDebugCompensatedGas:
		return "debug_compensated_gas"
	case OutputGasPercentage:
		return "gas_percentage"
	default:
		return fmt.Sprintf("output(%d)", uint8(k))
	}
}

// ParseOutputKind maps a configuration name to an OutputKind. Unknown
// names are a configuration error.
func ParseOutputKind(name string) (OutputKind, error) {
	switch name {
	case "iaq":
		return OutputIaq, nil
	case "static_iaq":
		return OutputStaticIaq, nil
	case "co2_equivalent":
		return OutputCo2Equivalent, nil
	case "breath_voc_equivalent":
		return OutputBreathVocEquivalent, nil
	case "raw_temperature":
		return OutputRawTemperature, nil
	case "raw_pressure":
		return OutputRawPressure, nil
	case "raw_humidity":
		return OutputRawHumidity, nil
	case "raw_gas":
		return OutputRawGas, nil
	case "stabilization_status":
		return OutputStabilizationStatus, nil
	case "run_in_status":
		return OutputRunInStatus, nil
	case "sensor_heat_compensated_temperature":
		return OutputSensorHeatCompensatedTemperature, nil
	case "sensor_heat_compensated_humidity":
		return OutputSensorHeatCompensatedHumidity, nil
	case "debug_compensated_gas":
		return OutputDebugCompensatedGas, nil
	case "gas_percentage":
		return OutputGasPercentage, nil
	default:
		return 0, fmt.Errorf("engine: unknown virtual sensor %q", name)
	}
}

// SampleRate selects how often the engine processes a virtual sensor.
type SampleRate int

const (
	// SampleRateDisabled removes an existing subscription.
	SampleRateDisabled SampleRate = iota
	// SampleRateUlp samples once every 300 seconds.
	SampleRateUlp
	// SampleRateContinuous samples once per second.
	SampleRateContinuous
	// SampleRateLp samples once every 3 seconds.
	SampleRateLp
	// SampleRateUlpMeasurementOnDemand requests a single extra ULP
	// measurement, consumed on the next step.
	SampleRateUlpMeasurementOnDemand
)

// ParseSampleRate maps a configuration name to a SampleRate.
func ParseSampleRate(name string) (SampleRate, error) {
	switch name {
	case "disabled":
		return SampleRateDisabled, nil
	case "ulp":
		return SampleRateUlp, nil
	case "continuous":
		return SampleRateContinuous, nil
	case "lp":
		return SampleRateLp, nil
	case "ulp_measurement_on_demand":
		return SampleRateUlpMeasurementOnDemand, nil
	default:
		return 0, fmt.Errorf("engine: unknown sample rate %q", name)
	}
}

// ToWire returns the engine-defined real number for the sample rate.
func (r SampleRate) ToWire() (float32, error) {
	switch r {
	case SampleRateDisabled:
		return wireSampleRateDisabled, nil
	case SampleRateUlp:
		return wireSampleRateUlp, nil
	case SampleRateContinuous:
		return wireSampleRateContinuous, nil
	case SampleRateLp:
		return wireSampleRateLp, nil
	case SampleRateUlpMeasurementOnDemand:
		return wireSampleRateUlpMeasurementOnDemand, nil
	default:
		return 0, &ConversionError{Field: "sample rate", Value: int64(r)}
	}
}

func (r SampleRate) String() string {
	switch r {
	case SampleRateDisabled:
		return "disabled"
	case SampleRateUlp:
		return "ulp"
	case SampleRateContinuous:
		return "continuous"
	case SampleRateLp:
		return "lp"
	case SampleRateUlpMeasurementOnDemand:
		return "ulp_measurement_on_demand"
	default:
		return fmt.Sprintf("sample_rate(%d)", int(r))
	}
}

// Accuracy grades the reliability of an output signal.
type Accuracy uint8

const (
	AccuracyUnreliable Accuracy = 0
	AccuracyLow        Accuracy = 1
	AccuracyMedium     Accuracy = 2
	AccuracyHigh       Accuracy = 3
)

// AccuracyFromWire maps an engine accuracy code to an Accuracy.
func AccuracyFromWire(code uint8) (Accuracy, error) {
	if code > uint8(AccuracyHigh) {
		return 0, &ConversionError{Field: "accuracy", Value: int64(code)}
	}
	return Accuracy(code), nil
}

func (a Accuracy) String() string {
	switch a {
	case AccuracyUnreliable:
		return "unreliable"
	case AccuracyLow:
		return "low"
	case AccuracyMedium:
		return "medium"
	case AccuracyHigh:
		return "high"
	default:
		return fmt.Sprintf("accuracy(%d)", uint8(a))
	}
}

// SubscriptionRequest asks the engine to emit one virtual sensor at the
// given rate.
type SubscriptionRequest struct {
	Sensor     OutputKind
	SampleRate SampleRate
}

// RequiredSensorSetting describes a physical channel the engine needs
// after a subscription change. Informational only; measurements are
// driven by the per-tick directive.
type RequiredSensorSetting struct {
	Sensor     InputKind
	SampleRate float32
}

// Input is one raw physical reading handed to the engine.
type Input struct {
	Sensor InputKind
	Signal float32
}

// Output is one derived or raw virtual sensor value from the engine.
type Output struct {
	TimestampNS int64      `json:"timestamp_ns"`
	Signal      float64    `json:"signal"`
	Sensor      OutputKind `json:"sensor"`
	Accuracy    Accuracy   `json:"accuracy"`
}
