// Package policy decides which actuator directives a reading calls for.
//
// Evaluation is a pure function of the room's reported actuator state, the
// Celsius reading and the configured comfort bands. Turning an actuator on
// happens as soon as a band edge is crossed; turning it off requires the value
// to clear a narrower interior band, so readings hovering around an edge do not
// toggle the actuator.
package policy
