package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/clock/clocktest"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine/enginetest"
	"github.com/jgosmann/linux-bsec-exporter/internal/sensor/sensortest"
)

func openTestEngine(t *testing.T, raw engine.RawEngine, sens engine.Sensor, clk *clocktest.Fake) *engine.Engine {
	t.Helper()
	eng, err := engine.Open(raw, sens, clk, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return eng
}

// completeMeasurement runs one full start/wait/process cycle.
func completeMeasurement(t *testing.T, eng *engine.Engine, clk *clocktest.Fake) []engine.Output {
	t.Helper()
	duration, err := eng.StartNextMeasurement()
	require.NoError(t, err)
	clk.Advance(duration)
	outputs, err := eng.ProcessLastMeasurement()
	require.NoError(t, err)
	return outputs
}

func TestOnlyOneEngineInstancePerProcess(t *testing.T) {
	clk := clocktest.New()
	sens := sensortest.New(nil)

	first, err := engine.Open(enginetest.New(), sens, clk, zap.NewNop())
	require.NoError(t, err)

	_, err = engine.Open(enginetest.New(), sens, clk, zap.NewNop())
	assert.ErrorIs(t, err, engine.ErrEngineInUse)

	first.Close()

	second, err := engine.Open(enginetest.New(), sens, clk, zap.NewNop())
	require.NoError(t, err)
	second.Close()
}

func TestStateRoundTrip(t *testing.T) {
	clk := clocktest.New()
	eng := openTestEngine(t, enginetest.New(), sensortest.New(nil), clk)

	state, err := eng.GetState()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	require.NoError(t, eng.SetState(state))

	restored, err := eng.GetState()
	require.NoError(t, err)
	assert.Equal(t, state, restored)
}

func TestConfigurationRoundTrip(t *testing.T) {
	clk := clocktest.New()
	eng := openTestEngine(t, enginetest.New(), sensortest.New(nil), clk)

	blob := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, eng.SetConfiguration(blob))

	restored, err := eng.GetConfiguration()
	require.NoError(t, err)
	assert.Equal(t, blob, restored)
}

func TestUpdateSubscriptionRejectsOverlongRequest(t *testing.T) {
	clk := clocktest.New()
	eng := openTestEngine(t, enginetest.New(), sensortest.New(nil), clk)

	requests := make([]engine.SubscriptionRequest, engine.MaxSubscriptionSlots+1)
	for i := range requests {
		requests[i] = engine.SubscriptionRequest{
			Sensor:     engine.OutputIaq,
			SampleRate: engine.SampleRateLp,
		}
	}
	_, err := eng.UpdateSubscription(requests)
	assert.ErrorIs(t, err, engine.ErrArgumentListTooLong)
}

func TestUpdateSubscriptionDropsUnknownRequiredSensors(t *testing.T) {
	clk := clocktest.New()
	raw := enginetest.New()
	raw.RequiredOverride = []engine.SensorConfiguration{
		{SampleRate: 1, SensorID: uint8(engine.InputTemperature)},
		{SampleRate: 1, SensorID: 99}, // outside the documented range
	}
	eng := openTestEngine(t, raw, sensortest.New(nil), clk)

	required, err := eng.UpdateSubscription([]engine.SubscriptionRequest{
		{Sensor: engine.OutputRawTemperature, SampleRate: engine.SampleRateContinuous},
	})
	require.NoError(t, err)
	require.Len(t, required, 1)
	assert.Equal(t, engine.InputTemperature, required[0].Sensor)
}

func TestSubscriptionDrivesOutputBufferSizing(t *testing.T) {
	clk := clocktest.New()
	raw := enginetest.New()
	sens := sensortest.New([]engine.Input{
		{Sensor: engine.InputTemperature, Signal: 21.5},
		{Sensor: engine.InputGasResistor, Signal: 120000},
	})
	eng := openTestEngine(t, raw, sens, clk)

	_, err := eng.UpdateSubscription([]engine.SubscriptionRequest{
		{Sensor: engine.OutputRawTemperature, SampleRate: engine.SampleRateContinuous},
		{Sensor: engine.OutputRawGas, SampleRate: engine.SampleRateContinuous},
	})
	require.NoError(t, err)

	completeMeasurement(t, eng, clk)
	require.Equal(t, []int{2}, raw.MaxOutputsHistory)

	// Disabling removes the sensor from future buffer sizing.
	_, err = eng.UpdateSubscription([]engine.SubscriptionRequest{
		{Sensor: engine.OutputRawGas, SampleRate: engine.SampleRateDisabled},
	})
	require.NoError(t, err)

	clk.Advance(time.Second)
	completeMeasurement(t, eng, clk)
	require.Equal(t, []int{2, 1}, raw.MaxOutputsHistory)

	// A one-shot request is included in exactly one step.
	_, err = eng.UpdateSubscription([]engine.SubscriptionRequest{
		{Sensor: engine.OutputCo2Equivalent, SampleRate: engine.SampleRateUlpMeasurementOnDemand},
	})
	require.NoError(t, err)

	clk.Advance(time.Second)
	completeMeasurement(t, eng, clk)
	clk.Advance(time.Second)
	completeMeasurement(t, eng, clk)
	require.Equal(t, []int{2, 1, 2, 1}, raw.MaxOutputsHistory)
}

func TestStartNextMeasurementHonorsDirective(t *testing.T) {
	clk := clocktest.New()
	raw := enginetest.New()
	raw.ForceNoTrigger = true
	sens := sensortest.New(nil)
	eng := openTestEngine(t, raw, sens, clk)

	_, err := eng.StartNextMeasurement()
	assert.ErrorIs(t, err, engine.ErrWouldBlock)
	assert.Equal(t, 0, sens.StartCalls(), "sensor must not be triggered when the directive says no")

	raw.ForceNoTrigger = false
	duration, err := eng.StartNextMeasurement()
	require.NoError(t, err)
	assert.Equal(t, sens.ProfileDuration, duration)
	assert.Equal(t, 1, sens.StartCalls())
}

func TestStartNextMeasurementForwardsDirectiveSettings(t *testing.T) {
	clk := clocktest.New()
	sens := sensortest.New(nil)
	eng := openTestEngine(t, enginetest.New(), sens, clk)

	_, err := eng.StartNextMeasurement()
	require.NoError(t, err)

	settings := sens.LastSettings()
	assert.Equal(t, uint16(300), settings.HeaterTemperature)
	assert.Equal(t, 100*time.Millisecond, settings.HeatingDuration)
	assert.True(t, settings.RunGas)
	assert.Equal(t, uint8(8), settings.TemperatureOversampling)
}

func TestProcessLastMeasurementBeforeStartPanics(t *testing.T) {
	clk := clocktest.New()
	eng := openTestEngine(t, enginetest.New(), sensortest.New(nil), clk)

	assert.Panics(t, func() { eng.ProcessLastMeasurement() })
}

func TestProcessLastMeasurementPropagatesWouldBlock(t *testing.T) {
	clk := clocktest.New()
	sens := sensortest.New([]engine.Input{
		{Sensor: engine.InputTemperature, Signal: 22},
	})
	sens.PendingPolls = 1
	eng := openTestEngine(t, enginetest.New(), sens, clk)

	_, err := eng.UpdateSubscription([]engine.SubscriptionRequest{
		{Sensor: engine.OutputRawTemperature, SampleRate: engine.SampleRateContinuous},
	})
	require.NoError(t, err)

	_, err = eng.StartNextMeasurement()
	require.NoError(t, err)

	_, err = eng.ProcessLastMeasurement()
	assert.ErrorIs(t, err, engine.ErrWouldBlock)

	outputs, err := eng.ProcessLastMeasurement()
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, engine.OutputRawTemperature, outputs[0].Sensor)
	assert.InDelta(t, 22.0, outputs[0].Signal, 1e-6)
	assert.Equal(t, engine.AccuracyHigh, outputs[0].Accuracy)
}

func TestProcessLastMeasurementDropsUnconvertibleOutputs(t *testing.T) {
	clk := clocktest.New()
	raw := enginetest.New()
	raw.OutputOverride = []engine.WireOutput{
		{Signal: 1, SignalDimensions: 1, SensorID: uint8(engine.OutputIaq), Accuracy: 3},
		{Signal: 2, SignalDimensions: 1, SensorID: 200, Accuracy: 3},
		{Signal: 3, SignalDimensions: 1, SensorID: uint8(engine.OutputRawGas), Accuracy: 9},
	}
	sens := sensortest.New([]engine.Input{
		{Sensor: engine.InputTemperature, Signal: 22},
	})
	eng := openTestEngine(t, raw, sens, clk)

	_, err := eng.StartNextMeasurement()
	require.NoError(t, err)

	outputs, err := eng.ProcessLastMeasurement()
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, engine.OutputIaq, outputs[0].Sensor)
}

func TestSensorFailuresAreWrappedAsCause(t *testing.T) {
	clk := clocktest.New()
	sens := sensortest.New(nil)
	sens.StartErr = assert.AnError
	eng := openTestEngine(t, enginetest.New(), sens, clk)

	_, err := eng.StartNextMeasurement()
	var sensorErr *engine.SensorError
	require.ErrorAs(t, err, &sensorErr)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNextMeasurementTimeTracksDirective(t *testing.T) {
	clk := clocktest.New()
	eng := openTestEngine(t, enginetest.New(), sensortest.New(nil), clk)

	_, err := eng.UpdateSubscription([]engine.SubscriptionRequest{
		{Sensor: engine.OutputRawTemperature, SampleRate: engine.SampleRateContinuous},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 0, eng.NextMeasurementTime())
	_, err = eng.StartNextMeasurement()
	require.NoError(t, err)
	assert.Equal(t, time.Second.Nanoseconds(), eng.NextMeasurementTime())
}

func TestResetOutputForwardsSensorID(t *testing.T) {
	clk := clocktest.New()
	raw := enginetest.New()
	eng := openTestEngine(t, raw, sensortest.New(nil), clk)

	require.NoError(t, eng.ResetOutput(engine.OutputIaq))
	assert.Equal(t, []uint8{uint8(engine.OutputIaq)}, raw.ResetOutputs)
}
