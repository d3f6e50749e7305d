package grpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	protoFile    = "transferflow/v1/transfer.proto"
	protoPackage = "transferflow.v1"
)

// transferMethods lists request and response types per RPC, in TransferServiceDesc order
var transferMethods = []struct {
	name    string
	in, out proto.Message
}{
	{"GetSession", &emptypb.Empty{}, &structpb.Struct{}},
	{"UpdateDraft", &structpb.Struct{}, &structpb.Struct{}},
	{"EditAmount", &wrapperspb.StringValue{}, &structpb.Struct{}},
	{"SelectSpeed", &wrapperspb.StringValue{}, &structpb.Struct{}},
	{"SubmitDraft", &structpb.Struct{}, &structpb.Struct{}},
	{"CancelConfirmation", &emptypb.Empty{}, &emptypb.Empty{}},
	{"ConfirmAndProcess", &emptypb.Empty{}, &structpb.Struct{}},
	{"ResetSession", &emptypb.Empty{}, &emptypb.Empty{}},
	{"ProbeBankCapability", &wrapperspb.StringValue{}, &wrapperspb.BoolValue{}},
}

// The service has no .proto source, so its file descriptor is assembled
// here and registered globally the way generated code does it. Server
// reflection resolves TransferServiceDesc.Metadata against this registry.
func init() {
	fd, err := protodesc.NewFile(transferFileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build %s descriptor: %v", protoFile, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("register %s descriptor: %v", protoFile, err))
	}
}

func transferFileDescriptorProto() *descriptorpb.FileDescriptorProto {
	var deps []string
	seen := map[string]bool{}
	typeName := func(m proto.Message) *string {
		desc := m.ProtoReflect().Descriptor()
		if path := desc.ParentFile().Path(); !seen[path] {
			seen[path] = true
			deps = append(deps, path)
		}
		return proto.String("." + string(desc.FullName()))
	}

	methods := make([]*descriptorpb.MethodDescriptorProto, 0, len(transferMethods))
	for _, m := range transferMethods {
		methods = append(methods, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.name),
			InputType:  typeName(m.in),
			OutputType: typeName(m.out),
		})
	}

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoFile),
		Package:    proto.String(protoPackage),
		Dependency: deps,
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("TransferService"),
			Method: methods,
		}},
	}
}
