package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/item"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

const actionServiced = "serviced"

type createItemRequest struct {
	Name                 string `json:"name" validate:"notblank,max=200"`
	Category             string `json:"category" validate:"omitempty,max=50"`
	ItemType             string `json:"itemType" validate:"notblank,max=100"`
	DateLastServiced     string `json:"dateLastServiced" validate:"required,calendardate"`
	ExpectedDurationDays *int   `json:"expectedDurationDays" validate:"omitempty,min=1,max=3650"`
	Image                string `json:"image" validate:"notblank"`
}

type updateItemRequest struct {
	Action               string  `json:"action" validate:"omitempty,oneof=serviced"`
	Name                 *string `json:"name" validate:"omitempty,notblank,max=200"`
	Category             *string `json:"category" validate:"omitempty,notblank,max=50"`
	ItemType             *string `json:"itemType" validate:"omitempty,notblank,max=100"`
	DateLastServiced     *string `json:"dateLastServiced" validate:"omitempty,calendardate"`
	ExpectedDurationDays *int    `json:"expectedDurationDays" validate:"omitempty,min=1,max=3650"`
	Image                *string `json:"image" validate:"omitempty,notblank"`
}

type itemResponse struct {
	ID                   string    `json:"id"`
	OwnerID              string    `json:"ownerId"`
	Name                 string    `json:"name"`
	Category             string    `json:"category"`
	ItemType             string    `json:"itemType"`
	DateLastServiced     string    `json:"dateLastServiced"`
	ExpectedDurationDays int       `json:"expectedDurationDays"`
	Image                string    `json:"image"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	DaysSinceChange      int       `json:"daysSinceChange"`
	PercentUsed          int       `json:"percentUsed"`
	DisplayPercent       int       `json:"displayPercent"`
	Status               string    `json:"status"`
	StatusColor          string    `json:"statusColor"`
}

func newItemResponse(a item.Annotated) itemResponse {
	return itemResponse{
		ID:                   a.ID,
		OwnerID:              a.OwnerID,
		Name:                 a.Name,
		Category:             a.Category,
		ItemType:             a.ItemType,
		DateLastServiced:     a.DateLastServiced.Format(time.DateOnly),
		ExpectedDurationDays: a.ExpectedDurationDays,
		Image:                a.Image,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
		DaysSinceChange:      a.ElapsedDays,
		PercentUsed:          a.PercentUsed,
		DisplayPercent:       a.DisplayPercent(),
		Status:               a.Status.String(),
		StatusColor:          a.Status.Color(),
	}
}

type ItemHandler struct {
	itemService *item.Service
	calculator  *status.Calculator
}

func NewItemHandler(itemService *item.Service, calculator *status.Calculator) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		calculator:  calculator,
	}
}

func (h *ItemHandler) HandleList(c *gin.Context) {
	session, _ := sessionFrom(c)

	items, err := h.itemService.List(c.Request.Context(), session.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, a := range items {
		out = append(out, newItemResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *ItemHandler) HandleCreate(c *gin.Context) {
	ctx := c.Request.Context()
	session, _ := sessionFrom(c)

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "request body must be a JSON object")
		return
	}
	if err := validate.Struct(req); err != nil {
		slog.WarnContext(ctx, "item create validation failed",
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, "validation_error", validationMessage(err))
		return
	}

	serviced, err := h.calculator.ParseDate(req.DateLastServiced)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	created, err := h.itemService.Create(ctx, session.UserID, item.CreateInput{
		Name:                 req.Name,
		Category:             req.Category,
		ItemType:             req.ItemType,
		DateLastServiced:     serviced,
		ExpectedDurationDays: req.ExpectedDurationDays,
		Image:                req.Image,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": newItemResponse(*created)})
}

// HandleUpdate applies either the "serviced" action or a partial field update.
func (h *ItemHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()
	session, _ := sessionFrom(c)
	itemID := c.Param("id")

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "request body must be a JSON object")
		return
	}
	if err := validate.Struct(req); err != nil {
		slog.WarnContext(ctx, "item update validation failed",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, "validation_error", validationMessage(err))
		return
	}

	var (
		updated *item.Annotated
		err     error
	)
	if req.Action == actionServiced {
		updated, err = h.itemService.MarkServiced(ctx, session.UserID, itemID)
	} else {
		var fields domain.ItemFields
		fields, err = h.toFields(req)
		if err == nil {
			updated, err = h.itemService.Update(ctx, session.UserID, itemID, fields)
		}
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": newItemResponse(*updated)})
}

func (h *ItemHandler) toFields(req updateItemRequest) (domain.ItemFields, error) {
	fields := domain.ItemFields{
		Name:                 req.Name,
		Category:             req.Category,
		ItemType:             req.ItemType,
		ExpectedDurationDays: req.ExpectedDurationDays,
		Image:                req.Image,
	}
	if req.DateLastServiced != nil {
		serviced, err := h.calculator.ParseDate(*req.DateLastServiced)
		if err != nil {
			return domain.ItemFields{}, err
		}
		fields.DateLastServiced = &serviced
	}
	return fields, nil
}

func (h *ItemHandler) HandleDelete(c *gin.Context) {
	session, _ := sessionFrom(c)

	if err := h.itemService.Delete(c.Request.Context(), session.UserID, c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
