// Package simulator publishes synthetic telemetry for one room.
//
// The simulated room drifts while its actuators are idle, follows the AC and
// humidity commands addressed to it and toggles its motion sensor on a fixed
// period.
package simulator
