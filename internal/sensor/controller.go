package sensor

import "fmt"

// OpenController opens the register-level BME68x driver for the given
// I²C bus device and address selector ("primary" or "secondary").
//
// The bus driver itself is not part of this module. Deployments link
// one in by reassigning this variable with their platform's
// implementation of ForcedModeController before startup; the default
// reports the missing driver instead of touching the bus.
var OpenController = func(device, address string) (ForcedModeController, error) {
	return nil, fmt.Errorf("sensor: no BME68x bus driver linked for %s (%s address)", device, address)
}
