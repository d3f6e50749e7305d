package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/transferflow-backend/internal/adapter/view"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/probe"
	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

// Server implements the TransferService gRPC server on top of a workflow session
type Server struct {
	Session *workflow.Session
	Logger  *zap.Logger
}

var _ TransferServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(session *workflow.Session, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Session: session,
		Logger:  logger,
	}
}

// GetSession handles the GetSession RPC
func (s *Server) GetSession(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(view.Snapshot(s.Session.Snapshot()))
}

// UpdateDraft handles the UpdateDraft RPC
func (s *Server) UpdateDraft(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	quote, err := s.Session.UpdateDraft(ctx, view.DraftFromMap(req.AsMap()))
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(view.Quote(quote))
}

// EditAmount handles the EditAmount RPC
func (s *Server) EditAmount(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	normalized, quote, err := s.Session.EditAmount(ctx, req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]interface{}{
		"amount": normalized,
		"quote":  view.Quote(quote),
	})
}

// SelectSpeed handles the SelectSpeed RPC
func (s *Server) SelectSpeed(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	speed, err := domain.ParseDeliverySpeed(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	quote, err := s.Session.SelectSpeed(ctx, speed)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(view.Quote(quote))
}

// SubmitDraft handles the SubmitDraft RPC
func (s *Server) SubmitDraft(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	confirmation, err := s.Session.SubmitDraft(ctx, view.DraftFromMap(req.AsMap()))
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(view.Confirmation(confirmation))
}

// CancelConfirmation handles the CancelConfirmation RPC
func (s *Server) CancelConfirmation(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.Session.CancelConfirmation(ctx); err != nil {
		return nil, mapError(err)
	}
	return &emptypb.Empty{}, nil
}

// ConfirmAndProcess handles the ConfirmAndProcess RPC. It returns once
// settlement completes; a caller that gives up does not stop the settlement.
func (s *Server) ConfirmAndProcess(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	future, err := s.Session.ConfirmAndProcess(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	record, err := future.Await(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(view.Record(record))
}

// ResetSession handles the ResetSession RPC
func (s *Server) ResetSession(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.Session.ResetSession(ctx); err != nil {
		return nil, mapError(err)
	}
	return &emptypb.Empty{}, nil
}

// ProbeBankCapability handles the ProbeBankCapability RPC
func (s *Server) ProbeBankCapability(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	supported, err := s.Session.ProbeBankCapability(ctx, req.GetValue()).Await(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return wrapperspb.Bool(supported), nil
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		st := status.New(codes.InvalidArgument, err.Error())
		badRequest := &errdetails.BadRequest{}
		for _, field := range verrs.Fields() {
			badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       string(field),
				Description: verrs[field],
			})
		}
		if detailed, derr := st.WithDetails(badRequest); derr == nil {
			return detailed.Err()
		}
		return st.Err()
	case errors.Is(err, domain.ErrInvalidTransition):
		return status.Errorf(codes.FailedPrecondition, "%s", err.Error())
	case errors.Is(err, domain.ErrSettlementFailed),
		errors.Is(err, probe.ErrLookupUnavailable),
		errors.Is(err, probe.ErrLookupFailed):
		return status.Errorf(codes.Unavailable, "%s", err.Error())
	case errors.Is(err, domain.ErrStaleCompletion):
		return status.Errorf(codes.Aborted, "%s", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}
