// internal/handlers/templates.go
package handlers

import (
	"net/http"

	"campus-findu/internal/models"

	"github.com/gin-gonic/gin"
)

// TemplateHandler отдаёт справочники категорий и формы заполнения —
// клиент строит экран подачи по ним.
type TemplateHandler struct{}

func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

func (h *TemplateHandler) GetCategories(c *gin.Context) {
	type categoryInfo struct {
		Code        string `json:"code"`
		DisplayName string `json:"display_name"`
	}

	categories := make([]categoryInfo, 0, len(models.AllCategories))
	for _, code := range models.AllCategories {
		categories = append(categories, categoryInfo{
			Code:        code,
			DisplayName: models.GetCategoryDisplayName(code),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// GetFieldTemplate возвращает форму для категории; для категорий без
// собственной формы отдаётся общая.
func (h *TemplateHandler) GetFieldTemplate(c *gin.Context) {
	category := c.Param("category")
	if !models.IsValidCategory(category) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Unknown category",
		})
		return
	}

	c.JSON(http.StatusOK, models.GetFieldTemplate(category))
}
