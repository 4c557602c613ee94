// Package console implements the alarm-console command.
//
// The console arms or disarms the alarm by publishing a switch command on the
// alarm control topic, and can follow the alarm events the control central
// publishes back.
package console
