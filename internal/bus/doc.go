// Package bus carries room telemetry and actuation commands over MQTT.
//
// Client wraps the paho MQTT client: it connects with a unique client id,
// reconnects automatically and restores every subscription after a reconnect.
// Memory is an in-process implementation with the same contract.
// Topics derives the topic names of one installation from its group id.
package bus
