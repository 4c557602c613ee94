// Package message defines the JSON payloads exchanged over the bus and the relay.
//
// Room telemetry keeps the field names the room firmware publishes
// (numero_sala, temperatura, ...), and so do the actuation commands rooms
// receive. Control messages sent to the control central use
// room_number/tipo_controle/acao. Decoders are lenient about how rooms encode
// room numbers and booleans (numbers, strings, 0/1).
package message
