// Package handler contains the HTTP controllers.
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/internal/service"
	"pdf-chat-go/pkg/log"
)

// PDFHandler handles PDF upload requests.
type PDFHandler struct {
	documentService service.DocumentService
	maxFileSize     int64
}

// NewPDFHandler creates a new PDFHandler instance.
func NewPDFHandler(documentService service.DocumentService, maxFileSize int64) *PDFHandler {
	if maxFileSize <= 0 {
		maxFileSize = 100 * 1024 * 1024
	}
	return &PDFHandler{documentService: documentService, maxFileSize: maxFileSize}
}

// Upload handles POST /v1/pdf: validates the multipart file, ingests it, and
// returns the new document identifier.
func (h *PDFHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "missing file field in multipart body"})
		return
	}

	if fileHeader.Header.Get("Content-Type") != "application/pdf" {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported file type. Only PDFs are allowed."})
		return
	}
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File size exceeds the 100 MB limit."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Upload: failed to open uploaded file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		log.Error("Upload: failed to read uploaded file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	if int64(len(data)) > h.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File size exceeds the 100 MB limit."})
		return
	}

	pdfID, err := h.documentService.Ingest(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		status, message := uploadErrorResponse(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pdf_id": pdfID})
}

// uploadErrorResponse translates ingest failures to a status and client
// message. Password protection is the one expected, recoverable case;
// everything else was already logged with full context by the layer that
// failed.
func uploadErrorResponse(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindPasswordProtected:
		return http.StatusUnauthorized, err.Error()
	case apperr.KindRateLimited:
		return http.StatusInternalServerError, "Embedding service rate limit exceeded: " + err.Error()
	default:
		return http.StatusInternalServerError, "Error processing PDF: " + err.Error()
	}
}
