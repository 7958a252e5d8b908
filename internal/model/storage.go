package model

import (
	"context"
	"io"
)

// ReportArchive persists reconciliation reports outside the database.
type ReportArchive interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
}
