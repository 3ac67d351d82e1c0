package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "edipulse/internal/errors"
	"edipulse/internal/exporter"
	"edipulse/internal/middleware"
	"edipulse/internal/services"
	"edipulse/pkg/contracts/domain"
)

// Multipart field names of POST /api/analyze
const (
	FieldFiles    = "files"
	FieldXref     = "xref"
	FieldPartners = "partners"
	FieldMaps     = "maps"
)

// Parts above this size spill to temporary files
const multipartMemory = 32 << 20

// AnalyzeForm holds the scalar form fields of an analysis request
type AnalyzeForm struct {
	TopN         int    `form:"top_n" validate:"omitempty,min=1,max=100"`
	Measure      string `form:"measure" validate:"omitempty,oneof=documents kilocharacters"`
	OnParseError string `form:"on_parse_error" validate:"omitempty,oneof=skip abort"`
	Format       string `form:"format" validate:"omitempty,oneof=json xlsx"`
}

// Analyzer runs one analysis; satisfied by *services.AnalysisService
type Analyzer interface {
	Analyze(ctx context.Context, batch domain.UploadBatch, o services.Overrides) (*domain.Report, error)
}

// AnalyzeHandler turns multipart uploads into an analysis run
type AnalyzeHandler struct {
	analyzer     Analyzer
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer Analyzer, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:     analyzer,
		validator:    middleware.NewValidator(),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "analyze")),
	}
}

// Routes returns the analysis routes
func (h *AnalyzeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.Analyze)
	return r
}

// Analyze handles POST /api/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	form, err := parseAnalyzeForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	batch, err := batchFromMultipart(r.MultipartForm)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), batch, services.Overrides{
		TopN:         form.TopN,
		Measure:      form.Measure,
		OnParseError: form.OnParseError,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis served",
		slog.String("session_id", report.SessionID),
		slog.String("customer", report.Customer),
		slog.Int("insights", len(report.Insights)),
		slog.Int("warnings", len(report.Warnings)))

	if form.Format == string(exporter.FormatXLSX) {
		h.writeWorkbook(w, r, report)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, report)
}

func (h *AnalyzeHandler) writeWorkbook(w http.ResponseWriter, r *http.Request, report *domain.Report) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.BaseName(report)+".xlsx"))
	if err := exporter.WriteXLSX(w, report); err != nil {
		// headers are already sent
		h.logger.ErrorContext(r.Context(), "failed to stream workbook", slog.String("error", err.Error()))
	}
}

func parseAnalyzeForm(r *http.Request) (AnalyzeForm, error) {
	form := AnalyzeForm{
		Measure:      r.FormValue("measure"),
		OnParseError: r.FormValue("on_parse_error"),
		Format:       r.FormValue("format"),
	}
	if raw := r.FormValue("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return form, apierrors.ErrValidation("top_n", "top_n must be an integer")
		}
		form.TopN = n
	}
	return form, nil
}

// batchFromMultipart keeps upload order; uploads are read from the multipart
// temp storage only when the pipeline opens them
func batchFromMultipart(mf *multipart.Form) (domain.UploadBatch, error) {
	var batch domain.UploadBatch

	for _, fh := range mf.File[FieldFiles] {
		batch.Files = append(batch.Files, uploadFromHeader(fh, domain.RolePrimary))
	}
	if len(batch.Files) == 0 {
		return batch, apierrors.MissingFilesError(FieldFiles)
	}

	aux := []struct {
		field string
		role  domain.FileRole
	}{
		{FieldXref, domain.RoleCrossReference},
		{FieldPartners, domain.RolePartnerReport},
		{FieldMaps, domain.RoleMapConfig},
	}
	for _, a := range aux {
		for _, fh := range mf.File[a.field] {
			batch.Auxiliary = append(batch.Auxiliary, uploadFromHeader(fh, a.role))
		}
	}
	return batch, nil
}

func uploadFromHeader(fh *multipart.FileHeader, role domain.FileRole) domain.Upload {
	return domain.Upload{
		Name: fh.Filename,
		Size: fh.Size,
		Role: role,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
