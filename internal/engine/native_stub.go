//go:build !(cgo && bsec)

package engine

import "errors"

// NativeEngine is only available when the binary is built with the
// bsec build tag against the vendor library.
type NativeEngine struct{}

func NewNativeEngine() (*NativeEngine, error) {
	return nil, errors.New("engine: built without BSEC support (rebuild with -tags bsec)")
}

var _ RawEngine = (*NativeEngine)(nil)

func (n *NativeEngine) Init() error { panic("engine: BSEC support not compiled in") }

func (n *NativeEngine) UpdateSubscription([]SensorConfiguration) ([]SensorConfiguration, error) {
	panic("engine: BSEC support not compiled in")
}

func (n *NativeEngine) SensorControl(int64) (SensorSettings, error) {
	panic("engine: BSEC support not compiled in")
}

func (n *NativeEngine) DoSteps([]WireInput, int) ([]WireOutput, error) {
	panic("engine: BSEC support not compiled in")
}

func (n *NativeEngine) GetState() ([]byte, error) { panic("engine: BSEC support not compiled in") }

func (n *NativeEngine) SetState([]byte) error { panic("engine: BSEC support not compiled in") }

func (n *NativeEngine) GetConfiguration() ([]byte, error) {
	panic("engine: BSEC support not compiled in")
}

func (n *NativeEngine) SetConfiguration([]byte) error {
	panic("engine: BSEC support not compiled in")
}

func (n *NativeEngine) ResetOutput(uint8) error { panic("engine: BSEC support not compiled in") }

func (n *NativeEngine) Version() string { return "unavailable" }
