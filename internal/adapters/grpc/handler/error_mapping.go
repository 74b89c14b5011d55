package handler

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/errmap"
)

var statusCodes = map[errmap.Class]codes.Code{
	errmap.InvalidArgument: codes.InvalidArgument,
	errmap.NotFound:        codes.NotFound,
	errmap.Conflict:        codes.AlreadyExists,
	errmap.Unauthenticated: codes.Unauthenticated,
	errmap.TooLarge:        codes.ResourceExhausted,
}

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code, ok := statusCodes[errmap.Classify(err)]
	if !ok {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
