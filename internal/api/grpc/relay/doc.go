// Package relay implements the gRPC channel between the room processor and the
// control central.
//
// The service has a single unary method, Send, whose request is a
// google.protobuf.Struct holding the JSON-compatible control message and whose
// response is google.protobuf.Empty. The descriptor is declared by hand, so no
// generated code is involved. The client classifies failures into typed errors
// and applies a bounded retry policy; the server validates the message and
// hands it to a Handler.
package relay
