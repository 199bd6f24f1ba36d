package engine

import (
	"errors"
	"fmt"
)

// ErrWouldBlock signals that an operation is not ready yet and should
// be retried on a later tick. It is never fatal.
var ErrWouldBlock = errors.New("engine: operation would block")

// ErrEngineInUse is returned by Open while another Engine handle is
// live in this process.
var ErrEngineInUse = errors.New("engine: fusion engine already in use")

// ErrArgumentListTooLong is returned when a subscription update exceeds
// the protocol's fixed slot count.
var ErrArgumentListTooLong = errors.New("engine: subscription request exceeds maximum slot count")

// Engine protocol errors, one per engine status code. Callers may react
// differently per condition, so they are never collapsed.
var (
	ErrStepInvalidInput          = errors.New("engine: step input is invalid")
	ErrStepValueOutOfRange       = errors.New("engine: step input value out of range")
	ErrStepDuplicateInput        = errors.New("engine: duplicate input signal in step")
	ErrStepNoOutputsReturnable   = errors.New("engine: no outputs returnable yet")
	ErrStepExcessOutputs         = errors.New("engine: output buffer too small for enabled outputs")
	ErrStepTimestampOutOfRange   = errors.New("engine: step timestamp difference out of range")
	ErrSubscriptionWrongDataRate = errors.New("engine: subscription sample rate does not match data rate")
	ErrSubscriptionSampleRate    = errors.New("engine: subscription sample rate out of limits")
	ErrSubscriptionDuplicateGate = errors.New("engine: duplicate output gate in subscription")
	ErrSubscriptionInvalidRate   = errors.New("engine: invalid subscription sample rate")
	ErrSubscriptionGateCount     = errors.New("engine: subscription gate count exceeds array")
	ErrSubscriptionIntervalMult  = errors.New("engine: sample interval not an integer multiple")
	ErrSubscriptionGasInterval   = errors.New("engine: multiple gas sample intervals requested")
	ErrSubscriptionHeaterOn      = errors.New("engine: heater-on duration too high for sample rate")
	ErrConfigSectionExceedsBuf   = errors.New("engine: configuration section exceeds work buffer")
	ErrConfigFail                = errors.New("engine: configuration failed")
	ErrConfigVersionMismatch     = errors.New("engine: configuration version mismatch")
	ErrConfigFeatureMismatch     = errors.New("engine: configuration feature mismatch")
	ErrConfigCrcMismatch         = errors.New("engine: configuration CRC mismatch")
	ErrConfigEmpty               = errors.New("engine: configuration blob is empty")
	ErrConfigInsufficientWorkBuf = errors.New("engine: work buffer too small for configuration")
	ErrConfigInvalidStringSize   = errors.New("engine: invalid configuration string size")
	ErrConfigInsufficientBuffer  = errors.New("engine: configuration buffer too small")
	ErrStateInvalidChannel       = errors.New("engine: invalid channel identifier in state blob")
	ErrStateInvalidLength        = errors.New("engine: invalid state blob length")
	ErrControlTimingViolation    = errors.New("engine: sensor control call timing violation")
	ErrControlUlpTimeLimit       = errors.New("engine: mode change exceeds ULP time limit")
	ErrControlInsufficientWait   = errors.New("engine: insufficient wait time before sensor control")
)

// Engine status codes as reported on the wire.
const (
	statusOK                         = 0
	statusStepInvalidInput           = -1
	statusStepValueOutOfRange        = -2
	statusStepDuplicateInput         = -6
	statusStepNoOutputsReturnable    = 2
	statusStepExcessOutputs          = 3
	statusStepTimestampOutOfRange    = 4
	statusSubscriptionWrongDataRate  = -10
	statusSubscriptionSampleRate     = -12
	statusSubscriptionDuplicateGate  = -13
	statusSubscriptionInvalidRate    = -14
	statusSubscriptionGateCount      = -15
	statusSubscriptionIntervalMult   = -16
	statusSubscriptionGasInterval    = -17
	statusSubscriptionHeaterOn       = -18
	statusConfigSectionExceedsBuf    = -32
	statusConfigFail                 = -33
	statusConfigVersionMismatch      = -34
	statusConfigFeatureMismatch      = -35
	statusConfigCrcMismatch          = -36
	statusConfigEmpty                = -37
	statusConfigInsufficientWorkBuf  = -38
	statusConfigInvalidStringSize    = -40
	statusConfigInsufficientBuffer   = -41
	statusStateInvalidChannel        = -100
	statusStateInvalidLength         = -104
	statusControlTimingViolation     = 100
	statusControlUlpTimeLimit        = 101
	statusControlInsufficientWait    = 102
)

var statusErrors = map[int32]error{
	statusStepInvalidInput:          ErrStepInvalidInput,
	statusStepValueOutOfRange:       ErrStepValueOutOfRange,
	statusStepDuplicateInput:        ErrStepDuplicateInput,
	statusStepNoOutputsReturnable:   ErrStepNoOutputsReturnable,
	statusStepExcessOutputs:         ErrStepExcessOutputs,
	statusStepTimestampOutOfRange:   ErrStepTimestampOutOfRange,
	statusSubscriptionWrongDataRate: ErrSubscriptionWrongDataRate,
	statusSubscriptionSampleRate:    ErrSubscriptionSampleRate,
	statusSubscriptionDuplicateGate: ErrSubscriptionDuplicateGate,
	statusSubscriptionInvalidRate:   ErrSubscriptionInvalidRate,
	statusSubscriptionGateCount:     ErrSubscriptionGateCount,
	statusSubscriptionIntervalMult:  ErrSubscriptionIntervalMult,
	statusSubscriptionGasInterval:   ErrSubscriptionGasInterval,
	statusSubscriptionHeaterOn:      ErrSubscriptionHeaterOn,
	statusConfigSectionExceedsBuf:   ErrConfigSectionExceedsBuf,
	statusConfigFail:                ErrConfigFail,
	statusConfigVersionMismatch:     ErrConfigVersionMismatch,
	statusConfigFeatureMismatch:     ErrConfigFeatureMismatch,
	statusConfigCrcMismatch:         ErrConfigCrcMismatch,
	statusConfigEmpty:               ErrConfigEmpty,
	statusConfigInsufficientWorkBuf: ErrConfigInsufficientWorkBuf,
	statusConfigInvalidStringSize:   ErrConfigInvalidStringSize,
	statusConfigInsufficientBuffer:  ErrConfigInsufficientBuffer,
	statusStateInvalidChannel:       ErrStateInvalidChannel,
	statusStateInvalidLength:        ErrStateInvalidLength,
	statusControlTimingViolation:    ErrControlTimingViolation,
	statusControlUlpTimeLimit:       ErrControlUlpTimeLimit,
	statusControlInsufficientWait:   ErrControlInsufficientWait,
}

// StatusError translates an engine status code into its named error.
// Zero is success and returns nil; unknown codes are reported verbatim.
func StatusError(code int32) error {
	if code == statusOK {
		return nil
	}
	if err, ok := statusErrors[code]; ok {
		return err
	}
	return fmt.Errorf("engine: unknown status code %d", code)
}

// ConversionError reports a wire value that does not map to a known
// domain enum.
type ConversionError struct {
	Field string
	Value int64
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("engine: invalid %s %d", e.Field, e.Value)
}

// SensorError wraps an opaque sensor-driver failure as a cause.
type SensorError struct {
	Err error
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("engine: sensor driver: %v", e.Err)
}

func (e *SensorError) Unwrap() error {
	return e.Err
}
