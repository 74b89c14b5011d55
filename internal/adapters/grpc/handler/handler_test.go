package handler

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
)

type stubNotifications struct {
	at  time.Time
	out []compliance.Notification
	err error
}

func (s *stubNotifications) Notifications(context.Context) ([]compliance.Notification, error) {
	return s.out, s.err
}

func (s *stubNotifications) NotificationsAt(_ context.Context, now time.Time) ([]compliance.Notification, error) {
	s.at = now
	return s.out, s.err
}

func (s *stubNotifications) Invalidate(context.Context) error {
	return nil
}

func dial(t *testing.T, register func(*grpc.Server), opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(opts...)
	register(srv)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRutService_OverBufconn(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	conn := dial(t, func(s *grpc.Server) {
		RegisterRutServer(s, NewRutHandler())
	}, grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(zap.New(core))))
	ctx := context.Background()

	valid := &wrapperspb.BoolValue{}
	if err := conn.Invoke(ctx, "/"+RutServiceName+"/Validate", wrapperspb.String("12.345.678-5"), valid); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !valid.GetValue() {
		t.Fatalf("expected 12.345.678-5 to be valid")
	}

	if err := conn.Invoke(ctx, "/"+RutServiceName+"/Validate", wrapperspb.String("12.345.678-4"), valid); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if valid.GetValue() {
		t.Fatalf("expected 12.345.678-4 to be invalid")
	}

	formatted := &wrapperspb.StringValue{}
	if err := conn.Invoke(ctx, "/"+RutServiceName+"/Format", wrapperspb.String("123456785"), formatted); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if formatted.GetValue() != "12.345.678-5" {
		t.Fatalf("unexpected format %q", formatted.GetValue())
	}

	check := &wrapperspb.StringValue{}
	if err := conn.Invoke(ctx, "/"+RutServiceName+"/ComputeCheckCharacter", wrapperspb.String("12345678"), check); err != nil {
		t.Fatalf("ComputeCheckCharacter returned error: %v", err)
	}
	if check.GetValue() != "5" {
		t.Fatalf("unexpected check character %q", check.GetValue())
	}

	err := conn.Invoke(ctx, "/"+RutServiceName+"/ComputeCheckCharacter", wrapperspb.String("12a"), check)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	if logs.FilterMessage("grpc request").Len() != 4 || logs.FilterMessage("grpc request failed").Len() != 1 {
		t.Fatalf("unexpected log entries: %d ok, %d failed",
			logs.FilterMessage("grpc request").Len(), logs.FilterMessage("grpc request failed").Len())
	}
}

func TestComplianceService_OverBufconn(t *testing.T) {
	t.Parallel()

	stub := &stubNotifications{out: []compliance.Notification{{
		Kind:     compliance.KindContractExpiring,
		Title:    "Contrato por vencer",
		Message:  "El contrato vence HOY",
		Date:     time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
		Priority: compliance.PriorityHigh,
	}}}
	conn := dial(t, func(s *grpc.Server) {
		RegisterComplianceServer(s, NewComplianceHandler(stub))
	})

	asOf := time.Date(2025, 10, 5, 13, 0, 0, 0, time.UTC)
	out := &structpb.ListValue{}
	if err := conn.Invoke(context.Background(), "/"+ComplianceServiceName+"/ListNotifications", timestamppb.New(asOf), out); err != nil {
		t.Fatalf("ListNotifications returned error: %v", err)
	}
	if !stub.at.Equal(asOf) {
		t.Fatalf("expected as-of %v, got %v", asOf, stub.at)
	}
	if len(out.GetValues()) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(out.GetValues()))
	}
	fields := out.GetValues()[0].GetStructValue().GetFields()
	if fields["kind"].GetStringValue() != "contract_expiring" ||
		fields["category"].GetStringValue() != "contract" ||
		fields["priority"].GetStringValue() != "high" ||
		fields["date"].GetStringValue() != "2025-10-05" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestComplianceHandler_ZeroTimestampMeansNow(t *testing.T) {
	t.Parallel()

	stub := &stubNotifications{}
	h := NewComplianceHandler(stub)

	if _, err := h.ListNotifications(context.Background(), &timestamppb.Timestamp{}); err != nil {
		t.Fatalf("ListNotifications returned error: %v", err)
	}
	if !stub.at.IsZero() {
		t.Fatalf("expected Notifications to be used for zero timestamp")
	}

	stub.err = errors.New("db down")
	_, err := h.ListNotifications(context.Background(), nil)
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestToStatusError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{user.ErrInvalidEmail, codes.InvalidArgument},
		{user.ErrUserNotFound, codes.NotFound},
		{user.ErrEmailAlreadyExists, codes.AlreadyExists},
		{user.ErrInvalidCredentials, codes.Unauthenticated},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		if got := status.Code(toStatusError(tc.err)); got != tc.want {
			t.Errorf("toStatusError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
	if toStatusError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := UnaryRecoveryInterceptor(zap.NewNop())
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(context.Context, any) (any, error) { panic("boom") })
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal after panic, got %v", err)
	}
}
