package engine

// RawEngine is the native call contract of the vendor fusion engine.
// Every method mirrors one engine call and reports failures via the
// status codes translated by StatusError. The engine behind this
// interface is a process-wide singleton; Engine handles enforce that,
// implementations do not have to.
type RawEngine interface {
	// Init performs the engine's one-time initialization.
	Init() error

	// UpdateSubscription requests the given virtual sensor gates and
	// returns the physical sensor settings the engine now requires.
	UpdateSubscription(requested []SensorConfiguration) ([]SensorConfiguration, error)

	// SensorControl queries the directive for the given timestamp.
	SensorControl(timestampNS int64) (SensorSettings, error)

	// DoSteps feeds one set of timestamped physical signals through the
	// fusion algorithm. The outputs slice bounds how many virtual
	// sensor values may be returned.
	DoSteps(inputs []WireInput, maxOutputs int) ([]WireOutput, error)

	// GetState serializes the engine's opaque internal state.
	GetState() ([]byte, error)

	// SetState restores a previously serialized state blob.
	SetState(state []byte) error

	// GetConfiguration serializes the engine's opaque configuration.
	GetConfiguration() ([]byte, error)

	// SetConfiguration loads an opaque configuration blob.
	SetConfiguration(config []byte) error

	// ResetOutput clears the engine-internal history of one virtual
	// sensor.
	ResetOutput(sensor uint8) error

	// Version reports the engine's version string.
	Version() string
}
