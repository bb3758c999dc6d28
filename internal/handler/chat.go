package handler

import (
	"errors"
	"net/http"
	"time"

	"lexi-backend/internal/model"
	"lexi-backend/internal/service"
	"lexi-backend/internal/storage"
	"lexi-backend/internal/utils"
	"lexi-backend/internal/viewer"
	"lexi-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const heartbeatInterval = 30 * time.Second

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Register mounts the chat routes on group, normally /api/chat.
func (h *ChatHandler) Register(chat *gin.RouterGroup) {
	chat.POST("/submit", h.Submit)
	chat.POST("/stream", h.StreamChat)

	chat.POST("/session", h.CreateSession)
	chat.POST("/session/list", h.GetSessionList)
	chat.GET("/session/del/:session_id", h.DeleteSession)
	chat.POST("/session/clear", h.ClearAllSessions)
	chat.GET("/session/:session_id", h.GetSession)
	chat.PUT("/session/:session_id", h.UpdateSessionTitle)
	chat.GET("/messages/:session_id", h.GetMessages)

	chat.GET("/session/:session_id/view", h.GetView)
	chat.POST("/session/:session_id/citation", h.SelectCitation)
	chat.DELETE("/session/:session_id/citation", h.CloseCitation)
	chat.GET("/session/:session_id/document", h.GetDocument)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, storage.ErrInvalidData):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, storage.ErrSessionNotFound),
		errors.Is(err, storage.ErrMessageNotFound),
		errors.Is(err, service.ErrCitationNotFound),
		errors.Is(err, service.ErrSelectionClosed),
		errors.Is(err, viewer.ErrDocumentNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{"path": c.FullPath()}).Errorf("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Submit answers a query synchronously and returns both new messages.
func (h *ChatHandler) Submit(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.chatService.Submit(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// StreamChat submits a query and streams the user message, the pending
// placeholder and the settled answer as server-sent events. Disconnecting
// stops the stream, not the query.
func (h *ChatHandler) StreamChat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.chatService.StreamSubmit(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sseWriter := utils.NewSSEWriter(c.Writer)
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				sseWriter.Close()
				return
			}
			if err := sseWriter.WriteJSON(event.Type, event); err != nil {
				logger.Errorf("Failed to write SSE: %v", err)
				return
			}

		case <-heartbeat.C:
			if err := sseWriter.Ping(); err != nil {
				logger.Warnf("Heartbeat failed: %v", err)
				return
			}

		case <-c.Request.Context().Done():
			logger.WithFields(logrus.Fields{"session_id": req.SessionID}).Info("stream client went away")
			return
		}
	}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	// an empty body gets the default title
	_ = c.ShouldBindJSON(&req)

	session, err := h.chatService.CreateSession(req.Title)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.chatService.GetSession(c.Param("session_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chatService.GetSessionMessages(sessionID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (h *ChatHandler) GetSessionList(c *gin.Context) {
	sessions, err := h.chatService.GetAllSessions()
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]model.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, model.NewSessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.chatService.DeleteSession(c.Param("session_id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *ChatHandler) ClearAllSessions(c *gin.Context) {
	kept, err := h.chatService.ClearAllSessions()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sessions cleared", "kept_busy": kept})
}

func (h *ChatHandler) UpdateSessionTitle(c *gin.Context) {
	var req model.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.UpdateSessionTitle(c.Param("session_id"), req.Title); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Title updated successfully"})
}

func (h *ChatHandler) GetView(c *gin.Context) {
	view, err := h.chatService.GetView(c.Param("session_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ChatHandler) SelectCitation(c *gin.Context) {
	var req model.SelectCitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel, err := h.chatService.SelectCitation(c.Param("session_id"), req.MessageID, *req.Index)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sel)
}

func (h *ChatHandler) CloseCitation(c *gin.Context) {
	if err := h.chatService.CloseCitation(c.Param("session_id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) GetDocument(c *gin.Context) {
	doc, err := h.chatService.OpenDocument(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}
