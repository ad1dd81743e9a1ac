package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/osinachi-dev/voxgate/internal/config"
	"github.com/osinachi-dev/voxgate/internal/files"
	"github.com/osinachi-dev/voxgate/internal/orchestrator"
	"github.com/osinachi-dev/voxgate/internal/session"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/audio"
	swaggofiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies bundles everything the routes need.
type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Store        *session.Store
	FileManager  *files.Manager
	Configs      *config.Settings
	Logger       *Logger.Logger
}

func NewServerDependencies(
	orch *orchestrator.Orchestrator,
	store *session.Store,
	fileManager *files.Manager,
	cfg *config.Settings,
	logger *Logger.Logger,
) Dependencies {
	return Dependencies{
		Orchestrator: orch,
		Store:        store,
		FileManager:  fileManager,
		Configs:      cfg,
		Logger:       logger,
	}
}

// RoutesManager holds handler state for the HTTP surface.
type RoutesManager struct {
	deps Dependencies
}

func NewRoutesManager(deps Dependencies) *RoutesManager {
	return &RoutesManager{deps: deps}
}

func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	rm := NewRoutesManager(dep)

	r.Use(corsMiddleware())

	r.GET("/", rm.handleRoot)
	r.GET("/health", rm.handleHealth)
	r.GET("/chat", rm.handleChatInfo)
	r.POST("/chat", rm.handleChat)
	r.DELETE("/session/:id", rm.handleDeleteSession)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggofiles.Handler))
}

// corsMiddleware allows any origin. Fine for a dev deployment behind a
// gateway; tighten before exposing directly.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Session-ID")
		c.Header("Access-Control-Expose-Headers",
			"X-Session-ID, X-Transcript, X-Bot-Response, X-Turn-Number, X-Processing-Time")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (rm *RoutesManager) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": rm.deps.Configs.AppName,
		"version": rm.deps.Configs.Version,
		"endpoints": gin.H{
			"health": "/health",
			"chat":   "/chat",
			"docs":   "/swagger/index.html",
		},
	})
}

// handleHealth reports status
// @Summary Health check
// @Description Returns service status, version and active session count
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (rm *RoutesManager) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Version:        rm.deps.Configs.Version,
		ActiveSessions: rm.deps.Store.ActiveCount(),
	})
}

func (rm *RoutesManager) handleChatInfo(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"error":   "Method Not Allowed",
		"message": "This endpoint only accepts POST requests with an audio file.",
		"usage": gin.H{
			"method":          "POST",
			"endpoint":        "/chat",
			"content_type":    "multipart/form-data",
			"required_field":  "file (audio file: WAV, MP3, OGG, WebM)",
			"optional_header": "X-Session-ID (for conversation continuity)",
		},
	})
}

// handleChat runs one voice turn
// @Summary Voice chat
// @Description Transcribes the uploaded audio, generates a reply and returns synthesized speech. Metadata travels in X-* response headers.
// @Tags Chat
// @Accept multipart/form-data
// @Produce audio/wav
// @Param file formData file true "Audio file (WAV, MP3, OGG, WebM)"
// @Param X-Session-ID header string false "Session identifier for conversation continuity"
// @Success 200 {file} binary "Synthesized audio response"
// @Failure 400 {object} ErrorResponse "Invalid audio upload"
// @Failure 502 {object} ErrorResponse "A pipeline stage failed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /chat [post]
func (rm *RoutesManager) handleChat(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing audio file",
			Details: "multipart field 'file' is required",
		})
		return
	}

	if !audio.ValidFormat(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "unsupported audio format",
			Details: fmt.Sprintf("%s is not supported; use WAV, MP3, OGG or WebM",
				filepath.Ext(fileHeader.Filename)),
		})
		return
	}

	maxBytes := rm.deps.Configs.Files.MaxUploadBytes
	if fileHeader.Size > maxBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "file too large",
			Details: fmt.Sprintf("uploaded %s, max %s",
				audio.FormatSize(fileHeader.Size), audio.FormatSize(maxBytes)),
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable upload", Details: err.Error()})
		return
	}
	audioBytes, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable upload", Details: err.Error()})
		return
	}

	sessionID := c.GetHeader("X-Session-ID")
	rm.deps.Logger.Infof("received audio file: %s (%s), session: %s",
		fileHeader.Filename, audio.FormatSize(fileHeader.Size), orDefault(sessionID, "new"))

	inputPath, err := rm.deps.FileManager.SaveUpload(audioBytes, strings.ToLower(filepath.Ext(fileHeader.Filename)))
	if err != nil {
		rm.deps.Logger.Errorf("failed to save upload: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	defer rm.deps.FileManager.Delete(inputPath)

	result, err := rm.deps.Orchestrator.Process(c.Request.Context(), inputPath, sessionID)
	if err != nil {
		rm.writePipelineError(c, err)
		return
	}

	c.Header("X-Session-ID", result.SessionID)
	c.Header("X-Transcript", sanitizeHeaderValue(result.Transcript))
	c.Header("X-Bot-Response", sanitizeHeaderValue(result.ReplyText))
	c.Header("X-Turn-Number", fmt.Sprintf("%d", result.TurnNumber))
	c.Header("X-Processing-Time", fmt.Sprintf("%.2f", result.ProcessingTime))

	rm.deps.Logger.Infof("returning response - session: %s, turn: %d, time: %.2fs",
		result.SessionID, result.TurnNumber, result.ProcessingTime)

	c.FileAttachment(result.AudioPath, fmt.Sprintf("response_%d.wav", result.TurnNumber))
}

// handleDeleteSession clears one session's state
// @Summary Delete session
// @Description Removes a conversation session and its history
// @Tags Chat
// @Produce json
// @Param id path string true "Session identifier"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Router /session/{id} [delete]
func (rm *RoutesManager) handleDeleteSession(c *gin.Context) {
	id := c.Param("id")
	if !rm.deps.Store.Delete(id) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found", Details: id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted", "session_id": id})
}

// writePipelineError maps orchestrator failures onto status codes without
// leaking internals: which stage failed is enough for the caller.
func (rm *RoutesManager) writePipelineError(c *gin.Context, err error) {
	var stageErr *orchestrator.StageError
	switch {
	case errors.Is(err, orchestrator.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input"})
	case errors.Is(err, orchestrator.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.As(err, &stageErr):
		rm.deps.Logger.Errorf("pipeline stage %s failed: %v", stageErr.Stage, stageErr.Err)
		detail := fmt.Sprintf("%s stage failed", stageErr.Stage)
		if stageErr.Timeout() {
			detail = fmt.Sprintf("%s stage timed out", stageErr.Stage)
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "voice processing failed", Details: detail})
	default:
		rm.deps.Logger.Errorf("chat endpoint error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
