package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIngestion matches every IngestionError via errors.Is
var ErrIngestion = errors.New("ingestion failed")

// IngestionError reports a workbook that cannot be turned into records:
// a required sheet is absent or required columns could not be resolved.
// It is fatal for the run; no partial output is produced.
type IngestionError struct {
	Sheet           string
	Missing         []string
	DetectedHeaders []string
	AvailableSheets []string
	Cause           error
}

// Error implements the error interface
func (e *IngestionError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("sheet %q: required columns not found: %s (detected: %s)",
			e.Sheet, strings.Join(e.Missing, ", "), strings.Join(e.DetectedHeaders, ", "))
	case len(e.AvailableSheets) > 0:
		return fmt.Sprintf("sheet %q not found (available: %s)", e.Sheet, strings.Join(e.AvailableSheets, ", "))
	case e.Cause != nil:
		return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Cause)
	default:
		return fmt.Sprintf("sheet %q could not be read", e.Sheet)
	}
}

// Is makes errors.Is(err, ErrIngestion) true
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

// Unwrap exposes the underlying read error, if any
func (e *IngestionError) Unwrap() error {
	return e.Cause
}

// NewMissingColumnsError reports unresolved column requirements
func NewMissingColumnsError(sheet string, missing, detected []string) *IngestionError {
	return &IngestionError{Sheet: sheet, Missing: missing, DetectedHeaders: detected}
}

// NewMissingSheetError reports a required sheet that is not in the workbook
func NewMissingSheetError(sheet string, available []string) *IngestionError {
	return &IngestionError{Sheet: sheet, AvailableSheets: available}
}

// NewUnreadableWorkbookError wraps a failure to open or read the workbook
func NewUnreadableWorkbookError(sheet string, cause error) *IngestionError {
	return &IngestionError{Sheet: sheet, Cause: cause}
}
