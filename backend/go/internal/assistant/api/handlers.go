package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"Concierge/backend/go/internal/assistant/service"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"
	"Concierge/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 输入限制。
const (
	MaxMessageLength   = 2000
	MaxSessionIDLength = 128
)

// Responder 生成一轮对话的回复。
type Responder interface {
	Respond(ctx context.Context, sessionID, message string) (string, error)
}

// Stats 提供统计查询。
type Stats interface {
	DailyAnalytics(date string) models.DailyAnalytics
	Session(id string) (models.SessionRecord, bool)
}

// Indexer 把文档写入知识库，返回写入的分块数。
type Indexer interface {
	Run(ctx context.Context, docs []models.SourceDocument) (int, error)
}

// API 持有对话服务的 HTTP 处理器。
type API struct {
	assistant Responder
	stats     Stats
	indexer   Indexer
	logger    *logger.Logger
}

// NewAPI 创建一个新的 API 处理器。
func NewAPI(assistant Responder, stats Stats, indexer Indexer, logger *logger.Logger) *API {
	return &API{assistant: assistant, stats: stats, indexer: indexer, logger: logger}
}

// ChatRequest 是聊天接口的请求体。
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse 是聊天接口的响应体。
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// SeedRequest 是知识库写入接口的请求体。
type SeedRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// SeedResponse 返回写入的分块数。
type SeedResponse struct {
	Chunks int `json:"chunks"`
}

func (r *ChatRequest) validate() error {
	r.Message = strings.TrimSpace(r.Message)
	r.SessionID = strings.TrimSpace(r.SessionID)
	switch {
	case r.Message == "":
		return errors.New("message is required")
	case utf8.RuneCountInString(r.Message) > MaxMessageLength:
		return errors.New("message is too long")
	case len(r.SessionID) > MaxSessionIDLength:
		return errors.New("sessionId is too long")
	}
	return nil
}

// ChatHandler 处理一轮对话。缺少 sessionId 时生成一个新的。
func (a *API) ChatHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "validation_error"}).Warn("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := a.assistant.Respond(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		// The service layer already logged the detailed error.
		if errors.Is(err, service.ErrModelCall) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is temporarily unavailable, please try again."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Reply: reply, SessionID: req.SessionID})
}

// DailyAnalyticsHandler 返回某一天（默认今天，UTC）的统计。
func (a *API) DailyAnalyticsHandler(c *gin.Context) {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}
	c.JSON(http.StatusOK, a.stats.DailyAnalytics(date))
}

// SessionHandler 返回单个会话的快照。
func (a *API) SessionHandler(c *gin.Context) {
	rec, ok := a.stats.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// SeedHandler 把一段文本写入知识库。
func (a *API) SeedHandler(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and text are required"})
		return
	}

	n, err := a.indexer.Run(c.Request.Context(), []models.SourceDocument{{Source: req.Source, Text: req.Text}})
	if err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).WithField("source", req.Source).Error("Failed to seed knowledge")
		if errors.Is(err, vectorstore.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Knowledge base is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed knowledge"})
		return
	}
	c.JSON(http.StatusOK, SeedResponse{Chunks: n})
}

// HealthHandler 用于存活探测。
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
