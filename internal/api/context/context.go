package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/socialgraph-server/internal/model"
)

// RequestIDHeader carries the request ID in HTTP headers and gRPC metadata.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

var _ model.RequestContextManager = (*Manager)(nil)

// Manager stores and retrieves per-request identifiers.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetRequestIDToContext returns a child context carrying requestID.
func (m *Manager) SetRequestIDToContext(ctx context.Context, requestID uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestIDFromContext returns the request ID set on ctx.
func (m *Manager) GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequestIDFromHeader parses a client supplied ID, generating a new one when
// it is missing or malformed.
func (m *Manager) RequestIDFromHeader(value string) uuid.UUID {
	if id, err := uuid.Parse(value); err == nil && id != uuid.Nil {
		return id
	}
	return uuid.New()
}

// RequestIDFromMetadata reads the request ID from incoming gRPC metadata.
func (m *Manager) RequestIDFromMetadata(ctx context.Context) uuid.UUID {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.New()
	}

	values := md.Get(RequestIDHeader)
	if len(values) == 0 {
		return uuid.New()
	}

	return m.RequestIDFromHeader(values[0])
}
