//go:build cgo && bsec

package engine

// Binding to the vendor fusion library. Building it requires the
// proprietary BSEC distribution:
//
//	CGO_CFLAGS=-I/path/to/bsec/inc CGO_LDFLAGS=-L/path/to/bsec \
//	    go build -tags bsec ./...

/*
#cgo LDFLAGS: -lalgobsec -lm
#include <stdlib.h>
#include "bsec_interface.h"
#include "bsec_datatypes.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// NativeEngine implements RawEngine on top of the vendor library. The
// library holds all state globally; the struct only carries the work
// buffers required by the state and configuration calls.
type NativeEngine struct {
	workBuffer [MaxWorkBufferSize]byte
}

var _ RawEngine = (*NativeEngine)(nil)

func NewNativeEngine() (*NativeEngine, error) {
	return &NativeEngine{}, nil
}

func (n *NativeEngine) Init() error {
	return StatusError(int32(C.bsec_init()))
}

func (n *NativeEngine) Version() string {
	var v C.bsec_version_t
	if err := StatusError(int32(C.bsec_get_version(&v))); err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d.%d.%d", v.major, v.minor, v.major_bugfix, v.minor_bugfix)
}

func (n *NativeEngine) UpdateSubscription(requested []SensorConfiguration) ([]SensorConfiguration, error) {
	reqs := make([]C.bsec_sensor_configuration_t, len(requested))
	for i, r := range requested {
		reqs[i].sample_rate = C.float(r.SampleRate)
		reqs[i].sensor_id = C.uint8_t(r.SensorID)
	}
	var required [C.BSEC_MAX_PHYSICAL_SENSOR]C.bsec_sensor_configuration_t
	nRequired := C.uint8_t(len(required))

	status := C.bsec_update_subscription(
		&reqs[0], C.uint8_t(len(reqs)), &required[0], &nRequired)
	if err := StatusError(int32(status)); err != nil {
		return nil, err
	}

	settings := make([]SensorConfiguration, int(nRequired))
	for i := range settings {
		settings[i] = SensorConfiguration{
			SampleRate: float32(required[i].sample_rate),
			SensorID:   uint8(required[i].sensor_id),
		}
	}
	return settings, nil
}

func (n *NativeEngine) SensorControl(timestampNS int64) (SensorSettings, error) {
	var s C.bsec_bme_settings_t
	status := C.bsec_sensor_control(C.int64_t(timestampNS), &s)
	if err := StatusError(int32(status)); err != nil {
		return SensorSettings{}, err
	}
	return SensorSettings{
		NextCallNS:              int64(s.next_call),
		ProcessData:             uint32(s.process_data),
		HeaterTemperature:       uint16(s.heater_temperature),
		HeatingDuration:         uint16(s.heating_duration),
		RunGas:                  uint8(s.run_gas),
		PressureOversampling:    uint8(s.pressure_oversampling),
		TemperatureOversampling: uint8(s.temperature_oversampling),
		HumidityOversampling:    uint8(s.humidity_oversampling),
		TriggerMeasurement:      uint8(s.trigger_measurement),
	}, nil
}

func (n *NativeEngine) DoSteps(inputs []WireInput, maxOutputs int) ([]WireOutput, error) {
	ins := make([]C.bsec_input_t, len(inputs))
	for i, in := range inputs {
		ins[i].time_stamp = C.int64_t(in.TimestampNS)
		ins[i].signal = C.float(in.Signal)
		ins[i].signal_dimensions = C.uint8_t(in.SignalDimensions)
		ins[i].sensor_id = C.uint8_t(in.SensorID)
	}
	if maxOutputs > int(C.BSEC_NUMBER_OUTPUTS) {
		maxOutputs = int(C.BSEC_NUMBER_OUTPUTS)
	}
	var outs [C.BSEC_NUMBER_OUTPUTS]C.bsec_output_t
	nOuts := C.uint8_t(maxOutputs)

	status := C.bsec_do_steps(&ins[0], C.uint8_t(len(ins)), &outs[0], &nOuts)
	if err := StatusError(int32(status)); err != nil {
		return nil, err
	}

	outputs := make([]WireOutput, int(nOuts))
	for i := range outputs {
		outputs[i] = WireOutput{
			TimestampNS:      int64(outs[i].time_stamp),
			Signal:           float32(outs[i].signal),
			SignalDimensions: uint8(outs[i].signal_dimensions),
			SensorID:         uint8(outs[i].sensor_id),
			Accuracy:         uint8(outs[i].accuracy),
		}
	}
	return outputs, nil
}

func (n *NativeEngine) GetState() ([]byte, error) {
	state := make([]byte, MaxStateBlobSize)
	var actual C.uint32_t
	status := C.bsec_get_state(0,
		(*C.uint8_t)(unsafe.Pointer(&state[0])), C.uint32_t(len(state)),
		(*C.uint8_t)(unsafe.Pointer(&n.workBuffer[0])), C.uint32_t(len(n.workBuffer)),
		&actual)
	if err := StatusError(int32(status)); err != nil {
		return nil, err
	}
	return state[:int(actual)], nil
}

func (n *NativeEngine) SetState(state []byte) error {
	if len(state) == 0 {
		return ErrStateInvalidLength
	}
	status := C.bsec_set_state(
		(*C.uint8_t)(unsafe.Pointer(&state[0])), C.uint32_t(len(state)),
		(*C.uint8_t)(unsafe.Pointer(&n.workBuffer[0])), C.uint32_t(len(n.workBuffer)))
	return StatusError(int32(status))
}

func (n *NativeEngine) GetConfiguration() ([]byte, error) {
	config := make([]byte, MaxPropertyBlobSize)
	var actual C.uint32_t
	status := C.bsec_get_configuration(0,
		(*C.uint8_t)(unsafe.Pointer(&config[0])), C.uint32_t(len(config)),
		(*C.uint8_t)(unsafe.Pointer(&n.workBuffer[0])), C.uint32_t(len(n.workBuffer)),
		&actual)
	if err := StatusError(int32(status)); err != nil {
		return nil, err
	}
	return config[:int(actual)], nil
}

func (n *NativeEngine) SetConfiguration(config []byte) error {
	if len(config) == 0 {
		return ErrConfigEmpty
	}
	status := C.bsec_set_configuration(
		(*C.uint8_t)(unsafe.Pointer(&config[0])), C.uint32_t(len(config)),
		(*C.uint8_t)(unsafe.Pointer(&n.workBuffer[0])), C.uint32_t(len(n.workBuffer)))
	return StatusError(int32(status))
}

func (n *NativeEngine) ResetOutput(sensor uint8) error {
	return StatusError(int32(C.bsec_reset_output(C.uint8_t(sensor))))
}
