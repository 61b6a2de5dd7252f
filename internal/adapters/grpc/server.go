package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/domain"
)

const serviceName = "facility.assistant.v1.AssistantInternalService"

// AssistantInternalService is the internal surface used by sibling services: facility sensors and
// kiosks file problems into a live session's board, and operators inspect sessions.
type AssistantInternalService interface {
	ReportProblem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SessionStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type AssistantInternalServer struct {
	service *application.Service
}

func NewAssistantInternalServer(service *application.Service) *AssistantInternalServer {
	return &AssistantInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc AssistantInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*AssistantInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ReportProblem",
				Handler:    unaryHandler("ReportProblem", func() *structpb.Struct { return &structpb.Struct{} }, svc.ReportProblem),
			},
			{
				MethodName: "GetSession",
				Handler:    unaryHandler("GetSession", func() *structpb.Struct { return &structpb.Struct{} }, svc.GetSession),
			},
			{
				MethodName: "SessionStats",
				Handler:    unaryHandler("SessionStats", func() *emptypb.Empty { return &emptypb.Empty{} }, svc.SessionStats),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "facility/assistant/v1/assistant_internal.proto",
	}, svc)
}

func (s *AssistantInternalServer) ReportProblem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, "session_id")
	if sessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing session_id")
	}
	problem, err := s.service.IntakeProblem(ctx, sessionID, application.ReportProblemRequest{
		Description: stringField(req, "description"),
		Location:    stringField(req, "location"),
		Priority:    stringField(req, "priority"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return buildStruct(map[string]any{
		"id":          problem.ID,
		"description": problem.Description,
		"location":    problem.Location,
		"priority":    string(problem.Priority),
		"status":      string(problem.Status),
		"reported_at": problem.ReportedAt.UTC().Format(time.RFC3339),
	})
}

func (s *AssistantInternalServer) GetSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, "session_id")
	if sessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing session_id")
	}
	view, err := s.service.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toStatus(err)
	}
	fields := map[string]any{
		"session_id":     view.SessionID,
		"state":          string(view.State),
		"turn_in_flight": view.TurnInFlight,
		"listening":      view.Listening,
		"message_count":  view.MessageCount,
		"last_active_at": view.LastActiveAt.UTC().Format(time.RFC3339),
	}
	if view.Account != nil {
		fields["username"] = view.Account.Username
		fields["role"] = string(view.Account.Role)
	}
	return buildStruct(fields)
}

func (s *AssistantInternalServer) SessionStats(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return buildStruct(map[string]any{
		"sessions": s.service.SessionCount(),
	})
}

func unaryHandler[Req any](method string, newReq func() Req, call func(context.Context, Req) (*structpb.Struct, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := newReq()
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(Req)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func stringField(req *structpb.Struct, name string) string {
	v := req.GetFields()[name]
	if v == nil {
		return ""
	}
	return v.GetStringValue()
}

func buildStruct(fields map[string]any) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}
