package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/application"
	"github.com/iota-uz/semi-catalog/pkg/composables"
	"github.com/iota-uz/semi-catalog/pkg/httpapi"
)

const (
	uploadField     = "csvFile"
	xlsxMIME        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	msgNoFile       = "No file uploaded"
	msgUploadOK     = "CSV uploaded and processed successfully"
	msgUploadFailed = "Internal server error"
)

type UploadOptions struct {
	MaxUploadSize   int64
	MaxUploadMemory int64
}

type CSVController struct {
	app           application.Application
	importService *services.ImportService
	opts          UploadOptions
	basePath      string
}

func NewCSVController(app application.Application, opts UploadOptions) application.Controller {
	return &CSVController{
		app:           app,
		importService: app.Service(services.ImportService{}).(*services.ImportService),
		opts:          opts,
		basePath:      "/api/csv",
	}
}

func (c *CSVController) Key() string {
	return c.basePath
}

func (c *CSVController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/upload", c.Upload).Methods(http.MethodPost)
}

func (c *CSVController) Upload(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())
	if c.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.opts.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(c.opts.MaxUploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusBadRequest, msgNoFile, nil)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.WithError(err).Warn("failed to remove multipart temp files")
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, msgNoFile, nil)
		return
	}
	defer file.Close()

	format, err := detectFormat(file, header)
	if err != nil {
		logger.WithError(err).WithField("filename", header.Filename).Warn("rejected upload")
		_ = httpapi.WriteError(w, http.StatusUnsupportedMediaType, "Unsupported file type", map[string]string{"filename": header.Filename})
		return
	}

	summary, err := c.importService.ImportUpload(r.Context(), header.Filename, format, file)
	if err != nil {
		logger.WithError(err).Error("Error processing CSV")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, msgUploadFailed, nil)
		return
	}
	fields := logrus.Fields{
		"filename":      header.Filename,
		"rows":          summary.Rows,
		"skipped":       summary.Skipped,
		"parts_created": summary.PartsCreated,
		"parts_updated": summary.PartsUpdated,
	}
	// Includes time spent waiting for an earlier import to finish.
	if start, ok := composables.UseRequestStart(r.Context()); ok {
		fields["elapsed"] = time.Since(start)
	}
	logger.WithFields(fields).Info("import finished")
	_ = httpapi.WriteMessage(w, http.StatusOK, msgUploadOK)
}

var errUnsupportedUpload = errors.New("upload is neither text nor a workbook")

// detectFormat sniffs the upload and rewinds it. Text is read as CSV; workbooks
// as XLSX.
func detectFormat(file multipart.File, header *multipart.FileHeader) (services.Format, error) {
	if header.Size == 0 {
		return services.FormatCSV, nil
	}
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case m.Is(xlsxMIME):
			return services.FormatXLSX, nil
		case m.Is("application/zip") && services.FormatFromName(header.Filename) == services.FormatXLSX:
			return services.FormatXLSX, nil
		case m.Is("text/plain"):
			return services.FormatCSV, nil
		}
	}
	return "", errUnsupportedUpload
}
