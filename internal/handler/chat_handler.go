package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/internal/service"
	"pdf-chat-go/pkg/log"
)

// ChatHandler handles chat requests against ingested documents.
type ChatHandler struct {
	chatService service.ChatService
	upgrader    websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler instance.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ChatRequest is the body of POST /v1/chat/:pdf_id.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat handles POST /v1/chat/:pdf_id.
func (h *ChatHandler) Chat(c *gin.Context) {
	pdfID := c.Param("pdf_id")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	answer, err := h.chatService.Answer(c.Request.Context(), pdfID, req.Message)
	if err != nil {
		status, message := chatErrorResponse(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// Stream handles GET /v1/chat/:pdf_id/stream: the client sends one
// {"message": ...} frame and receives the answer as text frames followed by
// a [DONE] frame.
func (h *ChatHandler) Stream(c *gin.Context) {
	pdfID := c.Param("pdf_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Stream: websocket upgrade failed", err)
		return
	}
	defer conn.Close()

	var req ChatRequest
	if err := conn.ReadJSON(&req); err != nil || req.Message == "" {
		_ = conn.WriteJSON(gin.H{"error": "expected a JSON frame with a message field"})
		return
	}

	if err := h.chatService.StreamAnswer(c.Request.Context(), pdfID, req.Message, conn); err != nil {
		_, message := chatErrorResponse(err)
		_ = conn.WriteJSON(gin.H{"error": message})
		return
	}

	_ = conn.WriteMessage(websocket.TextMessage, []byte("[DONE]"))
}

// chatErrorResponse translates chat failures to a status and client message.
// A registered document whose index cannot be located is a distinct
// integrity condition and is logged separately from plain unknown ids.
func chatErrorResponse(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindDocumentNotFound:
		return http.StatusNotFound, "PDF not found"
	case apperr.KindDocumentNotIndexed:
		return http.StatusInternalServerError, "index for this document could not be located"
	case apperr.KindRateLimited:
		return http.StatusInternalServerError, "Upstream rate limit exceeded: " + err.Error()
	default:
		return http.StatusInternalServerError, "failed to answer: " + err.Error()
	}
}
