package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

func TestInputKindWireRoundTrip(t *testing.T) {
	kinds := []engine.InputKind{
		engine.InputPressure,
		engine.InputHumidity,
		engine.InputTemperature,
		engine.InputGasResistor,
		engine.InputHeatSource,
		engine.InputDisableBaselineTracker,
	}
	for _, kind := range kinds {
		converted, err := engine.InputKindFromWire(uint8(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, converted)
	}
}

func TestInputKindFromWireRejectsUnknownCodes(t *testing.T) {
	for _, code := range []uint8{0, 5, 13, 22, 99, 255} {
		_, err := engine.InputKindFromWire(code)
		var convErr *engine.ConversionError
		assert.ErrorAs(t, err, &convErr, "code %d", code)
	}
}

func TestOutputKindWireRoundTrip(t *testing.T) {
	kinds := []engine.OutputKind{
		engine.OutputIaq,
		engine.OutputStaticIaq,
		engine.OutputCo2Equivalent,
		engine.OutputBreathVocEquivalent,
		engine.OutputRawTemperature,
		engine.OutputRawPressure,
		engine.OutputRawHumidity,
		engine.OutputRawGas,
		engine.OutputStabilizationStatus,
		engine.OutputRunInStatus,
		engine.OutputSensorHeatCompensatedTemperature,
		engine.OutputSensorHeatCompensatedHumidity,
		engine.OutputDebugCompensatedGas,
		engine.OutputGasPercentage,
	}
	for _, kind := range kinds {
		converted, err := engine.OutputKindFromWire(uint8(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, converted)
	}
}

func TestOutputKindFromWireRejectsUnknownCodes(t *testing.T) {
	for _, code := range []uint8{0, 5, 10, 11, 16, 17, 19, 20, 22, 255} {
		_, err := engine.OutputKindFromWire(code)
		var convErr *engine.ConversionError
		assert.ErrorAs(t, err, &convErr, "code %d", code)
	}
}

func TestSampleRateWireValues(t *testing.T) {
	cases := []struct {
		rate engine.SampleRate
		want float32
	}{
		{engine.SampleRateDisabled, 65535.0},
		{engine.SampleRateUlp, 1.0 / 300.0},
		{engine.SampleRateContinuous, 1.0},
		{engine.SampleRateLp, 1.0 / 3.0},
		{engine.SampleRateUlpMeasurementOnDemand, 0.0},
	}
	for _, c := range cases {
		got, err := c.rate.ToWire()
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.rate.String())
	}
}

func TestAccuracyFromWire(t *testing.T) {
	for code := uint8(0); code <= 3; code++ {
		accuracy, err := engine.AccuracyFromWire(code)
		require.NoError(t, err)
		assert.Equal(t, engine.Accuracy(code), accuracy)
	}
	_, err := engine.AccuracyFromWire(4)
	var convErr *engine.ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestAccuracyOrdering(t *testing.T) {
	assert.Less(t, engine.AccuracyUnreliable, engine.AccuracyLow)
	assert.Less(t, engine.AccuracyLow, engine.AccuracyMedium)
	assert.Less(t, engine.AccuracyMedium, engine.AccuracyHigh)
}

func TestParseOutputKind(t *testing.T) {
	kind, err := engine.ParseOutputKind("co2_equivalent")
	require.NoError(t, err)
	assert.Equal(t, engine.OutputCo2Equivalent, kind)

	_, err = engine.ParseOutputKind("co2")
	assert.Error(t, err)
}

func TestParseSampleRate(t *testing.T) {
	rate, err := engine.ParseSampleRate("ulp_measurement_on_demand")
	require.NoError(t, err)
	assert.Equal(t, engine.SampleRateUlpMeasurementOnDemand, rate)

	_, err = engine.ParseSampleRate("fast")
	assert.Error(t, err)
}

func TestStatusErrorMapping(t *testing.T) {
	assert.NoError(t, engine.StatusError(0))
	assert.ErrorIs(t, engine.StatusError(-34), engine.ErrConfigVersionMismatch)
	assert.ErrorIs(t, engine.StatusError(-36), engine.ErrConfigCrcMismatch)
	assert.ErrorIs(t, engine.StatusError(100), engine.ErrControlTimingViolation)
	assert.ErrorIs(t, engine.StatusError(-6), engine.ErrStepDuplicateInput)
	assert.Error(t, engine.StatusError(-9999))
}
