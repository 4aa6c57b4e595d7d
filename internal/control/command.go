// Package control coordinates operator commands against the durable store,
// the device relay, and the live event stream. The ordering rule is fixed:
// durable state is written first, the edge controller is told second, and
// viewers are notified last, so viewers only ever see values that are
// already durable.
package control

import (
	"errors"
	"fmt"
)

// ErrUnknownActuator indicates a command for an actuator outside the
// whitelist.
var ErrUnknownActuator = errors.New("unknown actuator")

// PwmMax is the upper bound of the PWM range understood by the controller.
const PwmMax = 255

// Actuators that may be driven manually. Anything else is rejected before
// it reaches the relay.
var actuatorWhitelist = map[string]struct{}{
	"pump_water":    {},
	"pump_nutrient": {},
	"fan":           {},
	"light":         {},
	"heater":        {},
}

// Command is a transient manual actuator command. It is never persisted;
// its only durable trace is an activity record.
type Command struct {
	Actuator string `json:"actuator"`
	State    bool   `json:"state"`
	Pwm      *int   `json:"pwm,omitempty"`
}

// normalize validates the actuator and clamps the PWM value into [0, PwmMax].
// Out-of-range PWM is clamped rather than rejected; the clamped value is
// what gets relayed, recorded, and broadcast.
func (c *Command) normalize() error {
	if _, ok := actuatorWhitelist[c.Actuator]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActuator, c.Actuator)
	}

	if c.Pwm != nil {
		pwm := *c.Pwm
		if pwm < 0 {
			pwm = 0
		}
		if pwm > PwmMax {
			pwm = PwmMax
		}
		c.Pwm = &pwm
	}
	return nil
}
