package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "rfdestaques/internal/errors"
)

// zipMagic opens every OOXML package
var zipMagic = []byte("PK\x03\x04")

// AllowedExtensions are the workbook formats the reader understands
var AllowedExtensions = []string{".xlsx", ".xlsm"}

// WorkbookValidator checks files before they reach the workbook reader
type WorkbookValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewWorkbookValidator creates a validator; maxBytes <= 0 disables the
// size check
func NewWorkbookValidator(maxBytes int64, logger *slog.Logger) *WorkbookValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookValidator{
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "workbook_validator")),
	}
}

// MaxBytes returns the configured size cap
func (v *WorkbookValidator) MaxBytes() int64 {
	return v.maxBytes
}

// ValidateName checks extension and rejects Office lock files ("~$...")
func (v *WorkbookValidator) ValidateName(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejected temporary Excel file", slog.String("file", base))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", base)).
			WithContext("file", base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	v.logger.Warn("Rejected non-workbook file",
		slog.String("file", base),
		slog.String("extension", ext))
	return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not an Excel workbook (extension: %q)", base, ext)).
		WithContext("file", base).
		WithContext("allowed_extensions", AllowedExtensions)
}

// ValidateSize enforces the size cap
func (v *WorkbookValidator) ValidateSize(size int64) error {
	if v.maxBytes > 0 && size > v.maxBytes {
		return apperrors.NewWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"Uploaded file is too large", fmt.Sprintf("%d bytes exceeds the %d byte limit", size, v.maxBytes))
	}
	return nil
}

// ValidateContent checks the zip signature at the start of the content
func (v *WorkbookValidator) ValidateContent(head []byte) error {
	if !bytes.HasPrefix(head, zipMagic) {
		return apperrors.NewAppValidationError("file content is not an xlsx package")
	}
	return nil
}

// ValidateUpload runs every check on an uploaded file and returns its
// content. At most maxBytes+1 bytes are read from r.
func (v *WorkbookValidator) ValidateUpload(name string, declaredSize int64, r io.Reader) ([]byte, error) {
	if err := v.ValidateName(name); err != nil {
		return nil, err
	}
	if err := v.ValidateSize(declaredSize); err != nil {
		return nil, err
	}

	reader := r
	if v.maxBytes > 0 {
		reader = io.LimitReader(r, v.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "failed to read upload", err)
	}
	if err := v.ValidateSize(int64(len(data))); err != nil {
		return nil, err
	}
	if err := v.ValidateContent(data); err != nil {
		return nil, err
	}

	v.logger.Debug("Upload validated",
		slog.String("file", filepath.Base(name)),
		slog.Int("size", len(data)))
	return data, nil
}

// ValidateFile checks a workbook on disk and returns its content
func (v *WorkbookValidator) ValidateFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return nil, apperrors.NewNotFoundError("file " + path)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to stat "+path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("file "+path+" is not readable", err)
	}
	defer f.Close()

	return v.ValidateUpload(path, info.Size(), f)
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *WorkbookValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory "+dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	file.Close()
	os.Remove(testFile)
	return nil
}
