// Package metrics exposes the published fusion outputs as Prometheus
// gauges, one value gauge and one accuracy gauge per virtual sensor.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

type gaugeUnit struct {
	identSuffix string
	display     string
}

func unit(u string) *gaugeUnit {
	return &gaugeUnit{identSuffix: u, display: u}
}

func unitWithDisplay(identSuffix, display string) *gaugeUnit {
	return &gaugeUnit{identSuffix: identSuffix, display: display}
}

type sensorGauge struct {
	value    prometheus.Gauge
	accuracy prometheus.Gauge
}

func newSensorGauge(name, help string, u *gaugeUnit) sensorGauge {
	valueName, valueHelp := name, help
	if u != nil {
		valueName = fmt.Sprintf("%s_%s", name, u.identSuffix)
		valueHelp = fmt.Sprintf("%s (%s)", help, u.display)
	}
	return sensorGauge{
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: valueName,
			Help: valueHelp,
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_accuracy", name),
			Help: fmt.Sprintf("%s (accuracy)", help),
		}),
	}
}

func (g sensorGauge) set(value float64, accuracy engine.Accuracy) {
	g.value.Set(value)
	g.accuracy.Set(float64(accuracy))
}

func gaugeFor(sensor engine.OutputKind) (sensorGauge, error) {
	switch sensor {
	case engine.OutputIaq:
		return newSensorGauge("iaq", "Indoor-air-quality estimate [0-500]", nil), nil
	case engine.OutputStaticIaq:
		return newSensorGauge("static_iaq", "Unscaled indoor-air-quality estimate", nil), nil
	case engine.OutputCo2Equivalent:
		return newSensorGauge("co2_equivalent", "CO2 equivalent estimate", unit("ppm")), nil
	case engine.OutputBreathVocEquivalent:
		return newSensorGauge("breath_voc_equivalent", "Breath VOC concentration estimate", unit("ppm")), nil
	case engine.OutputRawTemperature:
		return newSensorGauge("raw_temperature", "Temperature sensor signal", unitWithDisplay("celsius", "°C")), nil
	case engine.OutputRawPressure:
		return newSensorGauge("raw_pressure", "Pressure sensor signal", unit("Pa")), nil
	case engine.OutputRawHumidity:
		return newSensorGauge("raw_humidity", "Relative humidity sensor signal", unitWithDisplay("percent", "%")), nil
	case engine.OutputRawGas:
		return newSensorGauge("raw_gas", "Gas sensor signal", unitWithDisplay("ohm", "Ω")), nil
	case engine.OutputStabilizationStatus:
		return newSensorGauge("stabilization_status", "Gas sensor stabilization status (boolean)", nil), nil
	case engine.OutputRunInStatus:
		return newSensorGauge("run_in_status", "Gas sensor run-in status (boolean)", nil), nil
	case engine.OutputSensorHeatCompensatedTemperature:
		return newSensorGauge("temperature", "Sensor heat compensated temperature", unitWithDisplay("celsius", "°C")), nil
	case engine.OutputSensorHeatCompensatedHumidity:
		return newSensorGauge("humidity", "Sensor heat compensated humidity", unitWithDisplay("percent", "%")), nil
	case engine.OutputDebugCompensatedGas:
		return newSensorGauge("debug_compensated_gas", "Reserved internal debug output", nil), nil
	case engine.OutputGasPercentage:
		return newSensorGauge("gas", "Percentage of min and max filtered gas value", unitWithDisplay("percent", "%")), nil
	default:
		return sensorGauge{}, fmt.Errorf("metrics: no gauge defined for sensor %s", sensor)
	}
}

// Registry holds one gauge pair per tracked virtual sensor. Outputs for
// untracked sensors are ignored.
type Registry struct {
	registry *prometheus.Registry
	gauges   map[engine.OutputKind]sensorGauge
}

// NewRegistry creates gauges for the given sensors.
func NewRegistry(sensors []engine.OutputKind) (*Registry, error) {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[engine.OutputKind]sensorGauge, len(sensors)),
	}
	for _, sensor := range sensors {
		gauge, err := gaugeFor(sensor)
		if err != nil {
			return nil, err
		}
		if err := r.registry.Register(gauge.value); err != nil {
			return nil, err
		}
		if err := r.registry.Register(gauge.accuracy); err != nil {
			return nil, err
		}
		r.gauges[sensor] = gauge
	}
	return r, nil
}

// Apply updates the gauges from one published output set.
func (r *Registry) Apply(outputs []engine.Output) {
	for _, output := range outputs {
		if gauge, ok := r.gauges[output.Sensor]; ok {
			gauge.set(output.Signal, output.Accuracy)
		}
	}
}

// Gather collects the current metric families.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

// Handler serves the registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
