package model

import (
	"context"

	"github.com/google/uuid"
)

// RequestContextManager attaches per-request identifiers to a context.
type RequestContextManager interface {
	SetRequestIDToContext(ctx context.Context, requestID uuid.UUID) context.Context
	GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
