package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
)

// RutServiceName は RUT サービスの完全修飾名です。
const RutServiceName = "contador.rut.v1.RutService"

// RutServer は RUT サービスのサーバー側インターフェースです。
type RutServer interface {
	Validate(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Format(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	ComputeCheckCharacter(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// RutHandler は RUT の検証と整形を提供します。
type RutHandler struct{}

// NewRutHandler は RutHandler を生成します。
func NewRutHandler() *RutHandler {
	return &RutHandler{}
}

// Validate は RUT が正しいかどうかを返します。
func (h *RutHandler) Validate(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(rut.IsValid(in.GetValue())), nil
}

// Format は RUT を表示形式に整形します。検証は行いません。
func (h *RutHandler) Format(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(rut.Format(in.GetValue())), nil
}

// ComputeCheckCharacter は本体の数字列から検証文字を計算します。
func (h *RutHandler) ComputeCheckCharacter(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	check := rut.ComputeCheckCharacter(in.GetValue())
	if check == "" {
		return nil, status.Errorf(codes.InvalidArgument, "rut: %q is not a digit string", in.GetValue())
	}
	return wrapperspb.String(check), nil
}

// RegisterRutServer は RUT サービスを登録します。
func RegisterRutServer(s grpc.ServiceRegistrar, srv RutServer) {
	s.RegisterService(&RutServiceDesc, srv)
}

// RutServiceDesc は RUT サービスのサービス記述子です。
var RutServiceDesc = grpc.ServiceDesc{
	ServiceName: RutServiceName,
	HandlerType: (*RutServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler: unaryHandler(RutServiceName, "Validate", func(srv RutServer, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
				return srv.Validate(ctx, in)
			}),
		},
		{
			MethodName: "Format",
			Handler: unaryHandler(RutServiceName, "Format", func(srv RutServer, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
				return srv.Format(ctx, in)
			}),
		},
		{
			MethodName: "ComputeCheckCharacter",
			Handler: unaryHandler(RutServiceName, "ComputeCheckCharacter", func(srv RutServer, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
				return srv.ComputeCheckCharacter(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contador/rut/v1/rut.proto",
}
