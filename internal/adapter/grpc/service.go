package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = protoPackage + ".TransferService"

// TransferServiceServer is the server API for TransferService.
// Messages are protobuf well-known types so no generated code is needed.
type TransferServiceServer interface {
	GetSession(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UpdateDraft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditAmount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SelectSpeed(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SubmitDraft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelConfirmation(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ConfirmAndProcess(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ResetSession(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ProbeBankCapability(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// RegisterTransferServiceServer registers srv on s
func RegisterTransferServiceServer(s grpclib.ServiceRegistrar, srv TransferServiceServer) {
	s.RegisterService(&TransferServiceDesc, srv)
}

// TransferServiceDesc describes TransferService for grpc.Server.RegisterService
var TransferServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransferServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("GetSession", newEmpty, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.GetSession(ctx, in.(*emptypb.Empty))
		}),
		unary("UpdateDraft", newStruct, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.UpdateDraft(ctx, in.(*structpb.Struct))
		}),
		unary("EditAmount", newString, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.EditAmount(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("SelectSpeed", newString, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.SelectSpeed(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("SubmitDraft", newStruct, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.SubmitDraft(ctx, in.(*structpb.Struct))
		}),
		unary("CancelConfirmation", newEmpty, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.CancelConfirmation(ctx, in.(*emptypb.Empty))
		}),
		unary("ConfirmAndProcess", newEmpty, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.ConfirmAndProcess(ctx, in.(*emptypb.Empty))
		}),
		unary("ResetSession", newEmpty, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.ResetSession(ctx, in.(*emptypb.Empty))
		}),
		unary("ProbeBankCapability", newString, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.ProbeBankCapability(ctx, in.(*wrapperspb.StringValue))
		}),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: protoFile,
}

func newEmpty() proto.Message  { return new(emptypb.Empty) }
func newStruct() proto.Message { return new(structpb.Struct) }
func newString() proto.Message { return new(wrapperspb.StringValue) }

// unary builds a method handler the same way protoc-gen-go-grpc does
func unary(
	method string,
	newIn func() proto.Message,
	call func(TransferServiceServer, context.Context, proto.Message) (proto.Message, error),
) grpclib.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := newIn()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TransferServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(TransferServiceServer), ctx, req.(proto.Message))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
