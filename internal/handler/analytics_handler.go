package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/analytics"
)

type cocoDetectionRequest struct {
	Class string  `json:"class" validate:"required,max=100"`
	Score float64 `json:"score" validate:"gte=0,lte=1"`
}

type userSelectionRequest struct {
	DeviceType          string `json:"deviceType" validate:"max=100"`
	DeviceLabel         string `json:"deviceLabel" validate:"max=200"`
	WasFromAI           bool   `json:"wasFromAI"`
	ManualEntry         bool   `json:"manualEntry"`
	AISuggestionMatched bool   `json:"aiSuggestionMatched"`
}

type imageSizeRequest struct {
	Width  int `json:"width" validate:"gte=0"`
	Height int `json:"height" validate:"gte=0"`
}

type performanceRequest struct {
	InferenceTime *float64         `json:"inferenceTime" validate:"omitempty,gte=0"`
	ModelLoadTime *float64         `json:"modelLoadTime" validate:"omitempty,gte=0"`
	ImageSize     imageSizeRequest `json:"imageSize"`
}

type detectionLogRequest struct {
	SessionID      string                 `json:"sessionId" validate:"notblank,max=200"`
	CocoDetections []cocoDetectionRequest `json:"cocoDetections" validate:"max=100,dive"`
	UserSelection  userSelectionRequest   `json:"userSelection"`
	Performance    performanceRequest     `json:"performance"`
}

func (r detectionLogRequest) toDomain() *domain.DetectionLog {
	detections := make([]domain.CocoDetection, 0, len(r.CocoDetections))
	for _, d := range r.CocoDetections {
		detections = append(detections, domain.CocoDetection{Class: d.Class, Score: d.Score})
	}

	return &domain.DetectionLog{
		SessionID:      strings.TrimSpace(r.SessionID),
		CocoDetections: detections,
		UserSelection: domain.UserSelection{
			DeviceType:          r.UserSelection.DeviceType,
			DeviceLabel:         r.UserSelection.DeviceLabel,
			WasFromAI:           r.UserSelection.WasFromAI,
			ManualEntry:         r.UserSelection.ManualEntry,
			AISuggestionMatched: r.UserSelection.AISuggestionMatched,
		},
		Performance: domain.DetectionPerformance{
			InferenceTime: r.Performance.InferenceTime,
			ModelLoadTime: r.Performance.ModelLoadTime,
			ImageSize: domain.ImageSize{
				Width:  r.Performance.ImageSize.Width,
				Height: r.Performance.ImageSize.Height,
			},
		},
	}
}

type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// HandleIngest accepts anonymous telemetry. The caller gets success as soon as
// the payload is valid, whether or not the entry survives the queue.
func (h *AnalyticsHandler) HandleIngest(c *gin.Context) {
	ctx := c.Request.Context()

	var req detectionLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "request body must be a JSON object")
		return
	}
	if err := validate.Struct(req); err != nil {
		slog.DebugContext(ctx, "detection log validation failed",
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, "validation_error", validationMessage(err))
		return
	}

	entry := req.toDomain()
	if session, ok := sessionFrom(c); ok {
		entry.UserID = session.UserID
	}
	userAgent := c.GetHeader("User-Agent")
	entry.DeviceInfo = domain.DeviceInfo{
		UserAgent: userAgent,
		IsMobile:  strings.Contains(strings.ToLower(userAgent), "mobile"),
	}

	h.analyticsService.Ingest(ctx, entry)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleSummary must sit behind RequireSession and RequireAdmin.
func (h *AnalyticsHandler) HandleSummary(c *gin.Context) {
	days, err := analytics.ParseDays(c.Query("days"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), days)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
