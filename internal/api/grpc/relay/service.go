package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/room-control/internal/api/message"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "roomcontrol.v1.CommandRelay"
	// sendMethod is the full method path of Send.
	sendMethod = "/" + ServiceName + "/Send"
)

// sendServer is the server-side contract of the relay service.
type sendServer interface {
	Send(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
}

//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*sendServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Send",
			Handler:    sendHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "roomcontrol/v1/relay.proto",
}

// sendHandler decodes the request and runs it through the interceptor chain.
func sendHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is dictated by grpc.MethodDesc.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(sendServer)

	if interceptor == nil {
		return server.Send(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: sendMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		st, _ := req.(*structpb.Struct)

		return server.Send(ctx, st)
	}

	return interceptor(ctx, in, info, handler)
}

// toStruct converts a control message into the protobuf Struct carried on the wire.
func toStruct(c message.Control) (*structpb.Struct, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal control message: %w", err)
	}

	st := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("convert control message: %w", err)
	}

	return st, nil
}

// fromStruct converts a protobuf Struct back into a control message.
func fromStruct(st *structpb.Struct) (message.Control, error) {
	raw, err := protojson.Marshal(st)
	if err != nil {
		return message.Control{}, fmt.Errorf("convert control message: %w", err)
	}

	var c message.Control
	if err := json.Unmarshal(raw, &c); err != nil {
		return message.Control{}, fmt.Errorf("unmarshal control message: %w", err)
	}

	return c, nil
}
