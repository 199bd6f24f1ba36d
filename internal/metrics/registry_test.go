package metrics_test

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
	"github.com/jgosmann/linux-bsec-exporter/internal/metrics"
)

func gaugeValues(t *testing.T, registry *metrics.Registry) map[string]float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		require.Equal(t, dto.MetricType_GAUGE, family.GetType())
		require.Len(t, family.GetMetric(), 1)
		values[family.GetName()] = family.GetMetric()[0].GetGauge().GetValue()
	}
	return values
}

func TestRegistryExposesValueAndAccuracyGauges(t *testing.T) {
	registry, err := metrics.NewRegistry([]engine.OutputKind{
		engine.OutputCo2Equivalent,
		engine.OutputSensorHeatCompensatedTemperature,
		engine.OutputRawPressure,
	})
	require.NoError(t, err)

	registry.Apply([]engine.Output{
		{Sensor: engine.OutputCo2Equivalent, Signal: 412.5, Accuracy: engine.AccuracyHigh},
		{Sensor: engine.OutputSensorHeatCompensatedTemperature, Signal: 21.3, Accuracy: engine.AccuracyMedium},
		{Sensor: engine.OutputRawPressure, Signal: 101320, Accuracy: engine.AccuracyHigh},
	})

	values := gaugeValues(t, registry)
	assert.Equal(t, 412.5, values["co2_equivalent_ppm"])
	assert.Equal(t, 3.0, values["co2_equivalent_accuracy"])
	assert.Equal(t, 21.3, values["temperature_celsius"])
	assert.Equal(t, 2.0, values["temperature_accuracy"])
	assert.Equal(t, 101320.0, values["raw_pressure_Pa"])
	assert.Equal(t, 3.0, values["raw_pressure_accuracy"])
}

func TestRegistryIgnoresUntrackedOutputs(t *testing.T) {
	registry, err := metrics.NewRegistry([]engine.OutputKind{engine.OutputIaq})
	require.NoError(t, err)

	registry.Apply([]engine.Output{
		{Sensor: engine.OutputRawGas, Signal: 120000, Accuracy: engine.AccuracyHigh},
	})

	values := gaugeValues(t, registry)
	assert.Equal(t, 0.0, values["iaq"])
	assert.NotContains(t, values, "raw_gas_ohm")
}

func TestRegistryCoversAllVirtualSensors(t *testing.T) {
	all := []engine.OutputKind{
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
	registry, err := metrics.NewRegistry(all)
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2*len(all))
}

func TestRegistryHandlerServesTextFormat(t *testing.T) {
	registry, err := metrics.NewRegistry([]engine.OutputKind{engine.OutputIaq})
	require.NoError(t, err)
	registry.Apply([]engine.Output{
		{Sensor: engine.OutputIaq, Signal: 25, Accuracy: engine.AccuracyLow},
	})

	recorder := httptest.NewRecorder()
	registry.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "iaq 25")
	assert.Contains(t, body, "iaq_accuracy 1")
}
