// Package server exposes the HTTP surface: the Twilio WhatsApp webhook
// and a small JSON API mirroring the bot's building blocks.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kapebot/internal/domain"
	"kapebot/internal/service"
	"kapebot/internal/transport"
)

// backgroundTimeout bounds one webhook turn's background processing
const backgroundTimeout = 2 * time.Minute

// Server wires the HTTP routes to the bot
type Server struct {
	engine     transport.InboundHandler
	properties *service.PropertyService
	assistant  *service.Assistant
	sender     transport.Sender
	logger     *zap.Logger

	twilioConfigured bool
	openaiConfigured bool

	router *gin.Engine
}

// New creates the server and registers all routes
func New(
	engine transport.InboundHandler,
	properties *service.PropertyService,
	assistant *service.Assistant,
	sender transport.Sender,
	logger *zap.Logger,
	twilioConfigured, openaiConfigured bool,
) *Server {
	s := &Server{
		engine:           engine,
		properties:       properties,
		assistant:        assistant,
		sender:           sender,
		logger:           logger,
		twilioConfigured: twilioConfigured,
		openaiConfigured: openaiConfigured,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.POST("/webhook/whatsapp", s.handleWebhook)
	router.GET("/api/health", s.handleHealth)
	router.GET("/api/properties", s.handleProperties)
	router.POST("/api/whatsapp/send", s.handleSend)
	router.POST("/api/ai/process", s.handleProcess)

	s.router = router
	return s
}

// Handler returns the http.Handler for the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// webhookForm is the subset of Twilio's form post the bot reads
type webhookForm struct {
	Body        string `form:"Body"`
	From        string `form:"From"`
	ProfileName string `form:"ProfileName"`
}

// handleWebhook acknowledges the inbound message immediately and runs
// the conversation turn in the background. Processing failures are
// reported to the user by the engine, never to Twilio.
func (s *Server) handleWebhook(c *gin.Context) {
	var form webhookForm
	if err := c.ShouldBind(&form); err != nil || form.From == "" {
		c.String(http.StatusBadRequest, "missing sender")
		return
	}

	turnID := uuid.NewString()
	s.logger.Info("inbound whatsapp message",
		zap.String("turn_id", turnID),
		zap.String("from", form.From),
		zap.String("profile_name", form.ProfileName),
		zap.Int("body_len", len(form.Body)),
	)

	c.String(http.StatusOK, "OK")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		s.engine.Handle(ctx, domain.InboundMessage{
			Text:        form.Body,
			SenderID:    form.From,
			DisplayName: form.ProfileName,
		})
		s.logger.Info("turn finished", zap.String("turn_id", turnID))
	}()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"twilioConfigured": s.twilioConfigured,
		"openaiConfigured": s.openaiConfigured,
	})
}

func (s *Server) handleProperties(c *gin.Context) {
	properties, err := s.properties.All(c.Request.Context())
	if err != nil {
		s.logger.Error("list properties failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

type sendRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (s *Server) handleSend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: to, message"})
		return
	}

	if err := s.sender.Send(c.Request.Context(), req.To, req.Message); err != nil {
		s.logger.Error("api send failed", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type processRequest struct {
	Message string `json:"message" binding:"required"`
}

// handleProcess runs extraction + matching + reply generation on one
// message without touching any session.
func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message"})
		return
	}

	ctx := c.Request.Context()
	criteria := s.assistant.Extract(ctx, req.Message)

	results, err := s.properties.Search(ctx, criteria)
	if err != nil {
		s.logger.Error("api search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI processing failed"})
		return
	}

	reply := s.assistant.Reply(ctx, req.Message, results)

	if len(results) > 3 {
		results = results[:3]
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    reply,
		"criteria":   criteria,
		"properties": results,
	})
}
