package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpulse/surveychat/internal/domain"
	"github.com/workpulse/surveychat/internal/service"
)

// Handler handles chat and query API requests
type Handler struct {
	chatService *service.ChatService
	processor   *service.QueryProcessor
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService, processor *service.QueryProcessor) *Handler {
	return &Handler{chatService: chatService, processor: processor}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
	r.GET("/chat/:session_id/history", h.History)
	r.POST("/query", h.Query)
}

// Chat handles a conversational turn: pipeline plus answer generation.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case domain.ErrEmptyQuery:
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		case domain.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History returns the message history for a session
func (h *Handler) History(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chatService.History(sessionID)
	if err != nil {
		if err == domain.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}

type queryRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Query    string `json:"query" binding:"required"`
	Context  string `json:"context,omitempty"`
}

// Query runs the raw retrieval pipeline without answer generation. Useful
// for callers that do their own prompting.
func (h *Handler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.processor.Process(c.Request.Context(), service.QueryRequest{
		ThreadID: req.ThreadID,
		Query:    req.Query,
		Context:  req.Context,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
