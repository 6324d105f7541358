package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/voltahome/internal/service/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":   h.catalog.Categories(),
		"fallbackDays": catalog.GlobalFallbackDays,
	})
}
