package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "rfdestaques/internal/errors"
	"rfdestaques/internal/middleware"
	"rfdestaques/internal/services"
	"rfdestaques/internal/validation"
)

// Export content types
const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportFormats = []string{"csv", "xlsx"}

// DestaquesHandlerConfig carries the optional collaborators of the handler
type DestaquesHandlerConfig struct {
	// Archive keeps uploads and lists exports; nil disables both
	Archive ArchiveInterface
	// ExportsDir receives exports requested with save=true
	ExportsDir string
	// APIKeys guards the send route; empty leaves it open
	APIKeys map[string]string
}

// DestaquesHandler serves the processing, export and dispatch endpoints
type DestaquesHandler struct {
	service      DestaquesServiceInterface
	dispatch     DispatchServiceInterface
	uploads      *validation.WorkbookValidator
	forms        *middleware.FormValidator
	cfg          DestaquesHandlerConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDestaquesHandler creates the handler. dispatch may be nil when
// messaging is not configured.
func NewDestaquesHandler(
	service DestaquesServiceInterface,
	dispatch DispatchServiceInterface,
	uploads *validation.WorkbookValidator,
	cfg DestaquesHandlerConfig,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *DestaquesHandler {
	return &DestaquesHandler{
		service:      service,
		dispatch:     dispatch,
		uploads:      uploads,
		forms:        middleware.NewFormValidator(logger, errorHandler),
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "destaques_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the destaques routes
func (h *DestaquesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/exports", h.ListExports)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
		r.Post("/", h.Process)
		r.Post("/export", h.Export)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(h.logger, h.cfg.APIKeys, h.errorHandler))
			r.Use(middleware.AuditLog(h.logger))
			r.Post("/send", h.Send)
		})
	})

	return r
}

// ProcessResponse is the JSON body of a processing run
type ProcessResponse struct {
	*services.Result
	ArchivedAs string `json:"archived_as,omitempty"`
}

// Process handles POST /api/v1/destaques
func (h *DestaquesHandler) Process(w http.ResponseWriter, r *http.Request) {
	res, archived, ok := h.process(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, ProcessResponse{Result: res, ArchivedAs: archived})
}

// Export handles POST /api/v1/destaques/export?format=csv|xlsx and
// answers with the file as an attachment
func (h *DestaquesHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	format, ok := h.forms.ValidateEnum(w, r, "format", exportFormats, "csv")
	if !ok {
		return
	}
	save, ok := h.forms.ValidateBool(w, r, "save", false)
	if !ok {
		return
	}

	res, _, ok := h.run(w, r, data)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), res, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportFailed(format, err))
		return
	}

	if save && h.cfg.ExportsDir != "" {
		if _, err := h.service.SaveExports(r.Context(), res, h.cfg.ExportsDir, format == "csv", format == "xlsx"); err != nil {
			h.logger.WarnContext(r.Context(), "failed to save export copy", slog.String("error", err.Error()))
		}
	}

	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
	}
	name := h.service.ExportFileName(format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export", slog.String("error", err.Error()))
	}
}

// SendResponse is the JSON body of a dispatch
type SendResponse struct {
	RunID    string                    `json:"run_id"`
	Today    string                    `json:"today"`
	Warnings []string                  `json:"warnings"`
	Dispatch *services.DispatchSummary `json:"dispatch"`
}

// Send handles POST /api/v1/destaques/send: process, then dispatch the
// messages to every configured group
func (h *DestaquesHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.dispatch == nil {
		h.errorHandler.HandleError(w, r, apierrors.MessagingUnavailable(services.ErrMessagingNotConfigured.Error()))
		return
	}

	res, _, ok := h.process(w, r)
	if !ok {
		return
	}

	summary, err := h.dispatch.Send(r.Context(), res.Messages)
	if err != nil {
		if errors.Is(err, services.ErrMessagingNotConfigured) {
			err = apierrors.MessagingUnavailable(err.Error())
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Messages dispatched",
		slog.String("run_id", res.RunID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("client", middleware.APIClient(r.Context())),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))

	render.JSON(w, r, SendResponse{
		RunID:    res.RunID,
		Today:    res.Today,
		Warnings: res.Warnings,
		Dispatch: summary,
	})
}

// ListExports handles GET /api/v1/destaques/exports
func (h *DestaquesHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Archive == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrNotFound)
		return
	}
	found, err := h.cfg.Archive.ListExports()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to list exports", err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"exports": found,
		"count":   len(found),
	})
}

// process reads the upload and options and runs the pipeline. On failure
// the problem response has already been written.
func (h *DestaquesHandler) process(w http.ResponseWriter, r *http.Request) (*services.Result, string, bool) {
	data, ok := h.readUpload(w, r)
	if !ok {
		return nil, "", false
	}
	return h.run(w, r, data)
}

// run parses the options of an already read upload and processes it. The
// upload is archived when an archive is configured.
func (h *DestaquesHandler) run(w http.ResponseWriter, r *http.Request, data []byte) (*services.Result, string, bool) {
	opts, ok := h.parseOptions(w, r)
	if !ok {
		return nil, "", false
	}

	res, err := h.service.Process(r.Context(), data, opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, "", false
	}

	var archived string
	if h.cfg.Archive != nil {
		date, _ := time.Parse("2006-01-02", res.Today)
		archived, err = h.cfg.Archive.ArchiveUpload(date, res.InputHash, data)
		if err != nil {
			h.logger.WarnContext(r.Context(), "failed to archive upload", slog.String("error", err.Error()))
		}
	}
	return res, archived, true
}

// multipartMemory is how much of a form is kept in memory before spilling
// to temporary files
const multipartMemory = 8 << 20

// readUpload must run before any FormValue call so the body limit applies
func (h *DestaquesHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	// Leave room for the form fields around the file part
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+1<<20)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field file is required"))
		return nil, false
	}
	defer file.Close()

	data, err := h.uploads.ValidateUpload(header.Filename, header.Size, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return data, true
}

func (h *DestaquesHandler) parseOptions(w http.ResponseWriter, r *http.Request) (services.ProcessOptions, bool) {
	opts := h.service.DefaultOptions()
	var ok bool

	if opts.TopN, ok = h.forms.ValidateInt(w, r, "top_n", 1, 20, opts.TopN); !ok {
		return opts, false
	}
	if opts.MessageTopN, ok = h.forms.ValidateInt(w, r, "message_top_n", 1, 20, opts.MessageTopN); !ok {
		return opts, false
	}
	if opts.OmitEmptyBuckets, ok = h.forms.ValidateBool(w, r, "omit_empty", opts.OmitEmptyBuckets); !ok {
		return opts, false
	}
	if opts.MaxMinInvestment, ok = h.forms.ValidateFloat(w, r, "max_min_investment", opts.MaxMinInvestment); !ok {
		return opts, false
	}
	if opts.Today, ok = h.forms.ValidateDate(w, r, "today"); !ok {
		return opts, false
	}
	if floor := strings.TrimSpace(r.FormValue("rating_floor")); floor != "" {
		opts.RatingFloor = floor
	}

	return opts, h.forms.ValidateStruct(w, r, opts)
}
