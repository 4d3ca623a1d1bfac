package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/flashcard-api/internal/api/shared"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/importer"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/service"
)

const (
	// uploadField is the multipart field carrying the file.
	uploadField = "file"

	// multipartOverhead is allowed on top of the file size for the other
	// form fields and part headers.
	multipartOverhead = 1 << 20

	multipartMemory = 32 << 20
)

// ImportResponse is the outcome of an upload.
type ImportResponse struct {
	Success bool `json:"success"`
	service.ImportReport
}

// ImportHandler serves flashcard imports from uploaded files.
type ImportHandler struct {
	imports service.ImportService
	maxSize int64
	logger  *slog.Logger
}

// NewImportHandler creates a new ImportHandler. Uploads larger than maxSize
// bytes are rejected.
func NewImportHandler(imports service.ImportService, maxSize int64, logger *slog.Logger) *ImportHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ImportHandler")
	}
	if maxSize <= 0 {
		maxSize = importer.MaxFileSize
	}
	return &ImportHandler{
		imports: imports,
		maxSize: maxSize,
		logger:  logger.With(slog.String("component", "import_handler")),
	}
}

// Formats handles GET /import/formats
func (h *ImportHandler) Formats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.imports.Formats())
}

// Preview handles POST /import/preview
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	src, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := h.imports.Preview(r.Context(), src)
	if err != nil {
		HandleAPIError(w, r, err, "Preview failed")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, preview)
}

// Upload handles POST /import/upload
// Form fields: default_deck, auto_assign_decks, strip_html, deck_filter and
// save. With save set the cards are stored in the caller's collection.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	src, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	opts, err := importOptions(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	report, err := h.imports.Import(r.Context(), userID, src, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Import failed")
		return
	}

	log.Info("file imported",
		slog.String("filename", src.Name),
		slog.Int("imported", report.Summary.TotalImported),
		slog.Int("saved", report.Summary.Saved))
	shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{Success: true, ImportReport: *report})
}

// Validate handles POST /import/validate
func (h *ImportHandler) Validate(w http.ResponseWriter, r *http.Request) {
	src, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, h.imports.Validate(r.Context(), src))
}

// readUpload reads the uploaded file into memory. Bodies over the size
// limit are answered with 413.
func (h *ImportHandler) readUpload(w http.ResponseWriter, r *http.Request) (importer.Source, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. Maximum size is %dMB", h.maxSize>>20), err)
			return importer.Source{}, false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return importer.Source{}, false
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "A file must be uploaded in the 'file' field", err)
		return importer.Source{}, false
	}
	defer func() { _ = file.Close() }()

	// One byte past the limit lets the service report the size error.
	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read uploaded file", err)
		return importer.Source{}, false
	}

	return importer.Source{Name: header.Filename, Data: data}, true
}

func importOptions(r *http.Request) (service.ImportOptions, error) {
	opts := service.ImportOptions{
		DefaultDeck: strings.TrimSpace(r.FormValue("default_deck")),
		DeckFilter:  strings.TrimSpace(r.FormValue("deck_filter")),
	}
	for name, dst := range map[string]*bool{
		"auto_assign_decks": &opts.AutoAssignDecks,
		"strip_html":        &opts.StripHTML,
		"save":              &opts.Save,
	} {
		v, err := formBool(r, name)
		if err != nil {
			return service.ImportOptions{}, err
		}
		*dst = v
	}
	return opts, nil
}

func formBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewValidationError(name, "must be true or false", domain.ErrInvalidFormat)
	}
	return v, nil
}
