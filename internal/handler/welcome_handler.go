package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf-chat-go/internal/repository"
)

// Welcome returns the liveness and welcome handler. The payload reports how
// many documents the registry currently holds.
func Welcome(docRepo repository.DocumentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":          "PDF chat service is running. Upload a PDF at POST /v1/pdf, then ask questions at POST /v1/chat/{pdf_id}.",
			"documents_loaded": docRepo.Count(),
		})
	}
}
