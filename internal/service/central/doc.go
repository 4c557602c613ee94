// Package central implements the control central.
//
// The central receives control messages over the gRPC relay, queues them,
// describes each one in the log and republishes it as an actuation command on
// the bus so that rooms and the room processor can react.
package central
