package engine

// Engine-defined buffer maxima. Callers must allocate at least this
// much for the corresponding calls.
const (
	// MaxStateBlobSize is the maximum size of a serialized state blob.
	MaxStateBlobSize = 221
	// MaxPropertyBlobSize is the maximum size of a configuration blob.
	MaxPropertyBlobSize = 454
	// MaxWorkBufferSize is the scratch space required by the state and
	// configuration calls.
	MaxWorkBufferSize = 2048
	// NumOutputs is the number of virtual sensors the engine knows.
	NumOutputs = 14
	// MaxPhysicalSensors is the number of physical input slots.
	MaxPhysicalSensors = 8
	// MaxSubscriptionSlots bounds a single subscription update request.
	MaxSubscriptionSlots = NumOutputs
)

// Engine-defined sample-rate reals.
const (
	wireSampleRateDisabled               float32 = 65535.0
	wireSampleRateUlp                    float32 = 1.0 / 300.0
	wireSampleRateContinuous             float32 = 1.0
	wireSampleRateLp                     float32 = 1.0 / 3.0
	wireSampleRateUlpMeasurementOnDemand float32 = 0.0
)

// SensorConfiguration is the wire record for one subscription slot
// (sample_rate: f32, sensor_id: u8).
type SensorConfiguration struct {
	SampleRate float32
	SensorID   uint8
}

// WireInput is the wire record for one physical signal handed to a
// step call.
type WireInput struct {
	TimestampNS      int64
	Signal           float32
	SignalDimensions uint8
	SensorID         uint8
}

// WireOutput is the wire record for one virtual sensor value returned
// by a step call.
type WireOutput struct {
	TimestampNS      int64
	Signal           float32
	SignalDimensions uint8
	SensorID         uint8
	Accuracy         uint8
}

// SensorSettings is the engine's per-tick directive describing
// whether and how to take the next physical measurement.
type SensorSettings struct {
	NextCallNS              int64
	ProcessData             uint32
	HeaterTemperature       uint16
	HeatingDuration         uint16
	RunGas                  uint8
	PressureOversampling    uint8
	TemperatureOversampling uint8
	HumidityOversampling    uint8
	TriggerMeasurement      uint8
}