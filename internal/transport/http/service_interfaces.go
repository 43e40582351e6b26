package http

import (
	"context"
	"io"
	"time"

	"rfdestaques/internal/files"
	"rfdestaques/internal/presentation"
	"rfdestaques/internal/services"
)

// DestaquesServiceInterface is the part of services.DestaquesService the
// handlers use
type DestaquesServiceInterface interface {
	DefaultOptions() services.ProcessOptions
	Process(ctx context.Context, file []byte, opts services.ProcessOptions) (*services.Result, error)
	Export(ctx context.Context, res *services.Result, format string, w io.Writer) error
	SaveExports(ctx context.Context, res *services.Result, dir string, asCSV, asXLSX bool) ([]string, error)
	ExportFileName(format string) string
}

// DispatchServiceInterface sends a run's messages
type DispatchServiceInterface interface {
	Send(ctx context.Context, set presentation.MessageSet) (*services.DispatchSummary, error)
}

// ArchiveInterface keeps uploads and lists exports. Optional.
type ArchiveInterface interface {
	ArchiveUpload(date time.Time, hash string, data []byte) (string, error)
	ListExports() ([]files.FileInfo, error)
}
