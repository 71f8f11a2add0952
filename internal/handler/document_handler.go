package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/manualqa/internal/extract"
	"github.com/xxxsen/manualqa/internal/model"
	"github.com/xxxsen/manualqa/internal/pkg/errcode"
	"github.com/xxxsen/manualqa/internal/pkg/response"
	"github.com/xxxsen/manualqa/internal/service"
)

const sniffLen = 512

type DocumentHandler struct {
	ingest        *service.IngestService
	docs          *service.DocumentService
	maxUploadSize int64
}

func NewDocumentHandler(ingest *service.IngestService, docs *service.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, docs: docs, maxUploadSize: maxUploadSize}
}

type UploadResponse struct {
	Message   string                  `json:"message"`
	Documents []service.IngestOutcome `json:"documents"`
}

type DocumentListResponse struct {
	Documents []model.DocumentSummary `json:"documents"`
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "multipart form with files is required")
		return
	}
	headers := make([]*multipart.FileHeader, 0, len(form.File["files"])+len(form.File["file"]))
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["file"]...)
	if len(headers) == 0 {
		response.Error(c, errcode.ErrInvalidFile, "no files uploaded")
		return
	}
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, h.readUpload(fh))
	}
	outcomes := h.ingest.IngestBatch(c.Request.Context(), uploads)
	succeeded := 0
	for _, o := range outcomes {
		if o.Status == service.IngestStatusSuccess {
			succeeded++
		}
	}
	response.Success(c, UploadResponse{
		Message:   fmt.Sprintf("%d of %d documents processed", succeeded, len(outcomes)),
		Documents: outcomes,
	})
}

// readUpload resolves the file kind and reads the content. Problems are recorded on the
// upload so the rest of the batch still proceeds.
func (h *DocumentHandler) readUpload(fh *multipart.FileHeader) service.Upload {
	up := service.Upload{Filename: strings.TrimSpace(fh.Filename)}
	if err := checkUploadSize(up.Filename, fh.Size, h.maxUploadSize); err != nil {
		up.Err = err
		return up
	}
	f, err := fh.Open()
	if err != nil {
		up.Err = fmt.Errorf("open %s: %w", up.Filename, err)
		return up
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		up.Err = fmt.Errorf("read %s: %w", up.Filename, err)
		return up
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	kind, err := extract.DetectKind(up.Filename, fh.Header.Get("Content-Type"), head)
	if err != nil {
		up.Err = err
		return up
	}
	up.Kind = kind
	up.Data = data
	return up
}

func (h *DocumentHandler) List(c *gin.Context) {
	response.Success(c, DocumentListResponse{Documents: h.docs.List(c.Request.Context())})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docs.Get(c.Request.Context(), c.Param("filename"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	filename := c.Param("filename")
	if err := h.docs.Delete(c.Request.Context(), filename); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": fmt.Sprintf("Document %s deleted successfully", filename)})
}

func (h *DocumentHandler) Reset(c *gin.Context) {
	n := h.docs.Reset(c.Request.Context())
	response.Success(c, gin.H{"deleted": n})
}
