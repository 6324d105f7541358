package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/voltahome/internal/service/sweep"
)

type SweepRunner interface {
	Run(ctx context.Context) (*sweep.Result, error)
}

type sweepResponse struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	RunID         string              `json:"runId"`
	EmailsSent    int                 `json:"emailsSent"`
	EmailsFailed  int                 `json:"emailsFailed"`
	UsersChecked  int                 `json:"usersChecked"`
	UsersNotified int                 `json:"usersNotified"`
	ItemsRecorded int                 `json:"itemsRecorded"`
	Results       []sweep.OwnerResult `json:"results"`
}

type SweepHandler struct {
	runner       SweepRunner
	triggerToken string
}

// NewSweepHandler builds the sweep trigger. An empty triggerToken leaves the
// endpoint open, which is how the scheduler-less local setup calls it.
func NewSweepHandler(runner SweepRunner, triggerToken string) *SweepHandler {
	return &SweepHandler{
		runner:       runner,
		triggerToken: triggerToken,
	}
}

func (h *SweepHandler) HandleSweep(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.authorized(c) {
		slog.WarnContext(ctx, "sweep trigger rejected",
			slog.String("event", "sweep.trigger.unauthorized"),
		)
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid sweep trigger token")
		return
	}

	slog.InfoContext(ctx, "notification sweep triggered",
		slog.String("method", c.Request.Method),
	)

	result, err := h.runner.Run(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	results := result.Results
	if results == nil {
		results = []sweep.OwnerResult{}
	}

	c.JSON(http.StatusOK, sweepResponse{
		Success:       true,
		Message:       result.Message(),
		RunID:         result.RunID,
		EmailsSent:    result.EmailsSent,
		EmailsFailed:  result.EmailsFailed,
		UsersChecked:  result.UsersChecked,
		UsersNotified: result.UsersNotified,
		ItemsRecorded: result.ItemsRecorded,
		Results:       results,
	})
}

func (h *SweepHandler) authorized(c *gin.Context) bool {
	if h.triggerToken == "" {
		return true
	}
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.triggerToken)) == 1
}
