package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apicontext "github.com/dtroode/socialgraph-server/internal/api/context"
	"github.com/dtroode/socialgraph-server/internal/testutil"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	cm := apicontext.NewManager()
	lg := NewLogging(cm, testutil.MakeNoopLogger())

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				if _, ok := cm.GetRequestIDFromContext(ctx); !ok {
					return nil, status.Error(codes.FailedPrecondition, "request id missing")
				}
				time.Sleep(10 * time.Millisecond)
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "non-grpc error becomes Internal",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}

			st, ok := status.FromError(err)
			gotCode := codes.Internal
			if ok {
				gotCode = st.Code()
			}
			assert.Equal(t, tt.wantCode, gotCode)
		})
	}
}
