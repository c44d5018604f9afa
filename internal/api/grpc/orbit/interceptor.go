package orbit

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/oshokin/golden-orbit/internal/logger"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
)

// LoggingInterceptor tags the request logger with the method and the calling
// actor, and logs the outcome of every call.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		method := ""
		if info != nil {
			method = info.FullMethod
		}

		kvs := []any{"method", method}
		if actor := pb.ActorFromIncoming(ctx); actor != nil {
			kvs = append(kvs, "actor", actor.String())
		}

		ctx = logger.WithKV(ctx, kvs...)

		start := time.Now()
		resp, err := handler(ctx, req)

		if err != nil {
			logger.WarnKV(ctx, "Request failed", "code", status.Code(err).String(), "error", err,
				"duration", time.Since(start))
		} else {
			logger.DebugKV(ctx, "Request served", "duration", time.Since(start))
		}

		return resp, err
	}
}
