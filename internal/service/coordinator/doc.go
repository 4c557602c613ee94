// Package coordinator owns the per-room state of the installation.
//
// The Coordinator ingests telemetry, accrues cost and energy, evaluates the
// comfort policy and the intrusion alarm, and turns every decision into a
// directive that is handed to the relay. It also applies actuator feedback
// echoed by the control central, owns the alarm switch and runs the liveness
// sweep on request.
//
// Each room has its own lock. Relay and sink calls are made after that lock is
// released, and their failures never roll a record back.
package coordinator
