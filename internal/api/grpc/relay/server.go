package relay

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/logger"
)

// Handler accepts validated control messages on the server side.
type Handler interface {
	Accept(ctx context.Context, c message.Control) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, c message.Control) error

// Accept calls f.
func (f HandlerFunc) Accept(ctx context.Context, c message.Control) error {
	return f(ctx, c)
}

// Server is the gRPC transport adapter around a Handler.
type Server struct {
	// handler receives every decoded control message.
	handler Handler
}

// NewServer returns a transport adapter bound to handler.
func NewServer(handler Handler) *Server {
	return &Server{handler: handler}
}

// Register attaches the relay service to a gRPC server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&serviceDesc, s)
}

// Send decodes, validates and forwards a control message.
func (s *Server) Send(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	control, err := fromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := control.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.handler.Accept(ctx, control); err != nil {
		logger.WarnKV(ctx, "Control message not accepted",
			"room_number", control.RoomNumber,
			"tipo_controle", control.ControlType,
			"error", err)

		return nil, status.Error(codes.Unavailable, err.Error())
	}

	return new(emptypb.Empty), nil
}
