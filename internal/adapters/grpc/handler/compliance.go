package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
)

// ComplianceServiceName は通知サービスの完全修飾名です。
const ComplianceServiceName = "contador.compliance.v1.ComplianceService"

// ComplianceServer は通知サービスのサーバー側インターフェースです。
type ComplianceServer interface {
	ListNotifications(ctx context.Context, in *timestamppb.Timestamp) (*structpb.ListValue, error)
}

// ComplianceHandler は通知ユースケースを gRPC に公開します。
type ComplianceHandler struct {
	notifications compliance.UseCase
}

// NewComplianceHandler は ComplianceHandler を生成します。
func NewComplianceHandler(uc compliance.UseCase) *ComplianceHandler {
	return &ComplianceHandler{notifications: uc}
}

// ListNotifications は指定時刻時点の通知を返します。時刻が未指定の場合は現在時刻です。
func (h *ComplianceHandler) ListNotifications(ctx context.Context, in *timestamppb.Timestamp) (*structpb.ListValue, error) {
	var (
		notifications []compliance.Notification
		err           error
	)
	if in == nil || (in.GetSeconds() == 0 && in.GetNanos() == 0) {
		notifications, err = h.notifications.Notifications(ctx)
	} else {
		if verr := in.CheckValid(); verr != nil {
			return nil, status.Error(codes.InvalidArgument, verr.Error())
		}
		notifications, err = h.notifications.NotificationsAt(ctx, in.AsTime())
	}
	if err != nil {
		return nil, toStatusError(err)
	}
	return notificationsToList(notifications), nil
}

func notificationsToList(notifications []compliance.Notification) *structpb.ListValue {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(notifications))}
	for _, n := range notifications {
		list.Values = append(list.Values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"kind":     structpb.NewStringValue(string(n.Kind)),
				"category": structpb.NewStringValue(string(n.Kind.Category())),
				"title":    structpb.NewStringValue(n.Title),
				"message":  structpb.NewStringValue(n.Message),
				"date":     structpb.NewStringValue(n.Date.Format("2006-01-02")),
				"priority": structpb.NewStringValue(n.Priority.String()),
			},
		}))
	}
	return list
}

// RegisterComplianceServer は通知サービスを登録します。
func RegisterComplianceServer(s grpc.ServiceRegistrar, srv ComplianceServer) {
	s.RegisterService(&ComplianceServiceDesc, srv)
}

// ComplianceServiceDesc は通知サービスのサービス記述子です。
var ComplianceServiceDesc = grpc.ServiceDesc{
	ServiceName: ComplianceServiceName,
	HandlerType: (*ComplianceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListNotifications",
			Handler: unaryHandler(ComplianceServiceName, "ListNotifications", func(srv ComplianceServer, ctx context.Context, in *timestamppb.Timestamp) (*structpb.ListValue, error) {
				return srv.ListNotifications(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contador/compliance/v1/compliance.proto",
}
