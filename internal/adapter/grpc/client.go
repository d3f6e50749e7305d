package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls TransferService over an established connection
type Client struct {
	cc grpclib.ClientConnInterface
}

// NewClient creates a new TransferService client
func NewClient(cc grpclib.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpclib.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) GetSession(ctx context.Context, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetSession", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateDraft(ctx context.Context, draft map[string]interface{}, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.callWithStruct(ctx, "UpdateDraft", draft, opts...)
}

func (c *Client) SubmitDraft(ctx context.Context, draft map[string]interface{}, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.callWithStruct(ctx, "SubmitDraft", draft, opts...)
}

func (c *Client) EditAmount(ctx context.Context, raw string, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "EditAmount", wrapperspb.String(raw), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SelectSpeed(ctx context.Context, speed string, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "SelectSpeed", wrapperspb.String(speed), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelConfirmation(ctx context.Context, opts ...grpclib.CallOption) error {
	return c.invoke(ctx, "CancelConfirmation", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *Client) ConfirmAndProcess(ctx context.Context, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "ConfirmAndProcess", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResetSession(ctx context.Context, opts ...grpclib.CallOption) error {
	return c.invoke(ctx, "ResetSession", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *Client) ProbeBankCapability(ctx context.Context, routingNumber string, opts ...grpclib.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, "ProbeBankCapability", wrapperspb.String(routingNumber), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) callWithStruct(ctx context.Context, method string, fields map[string]interface{}, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
