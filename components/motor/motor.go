// Package motor defines the actuation interface the drivetrain drives its wheels through.
package motor

// A Motor accepts a voltage command. Commands outside the supply range are clamped by the
// implementation.
type Motor interface {
	SetVoltage(volts float64) error
}

// VoltageFunc adapts a plain function to a Motor.
type VoltageFunc func(volts float64) error

// SetVoltage calls f.
func (f VoltageFunc) SetVoltage(volts float64) error {
	return f(volts)
}
