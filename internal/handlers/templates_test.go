package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-findu/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTemplateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewTemplateHandler()
	router.GET("/categories", h.GetCategories)
	router.GET("/categories/:category/template", h.GetFieldTemplate)
	return router
}

func TestGetCategories(t *testing.T) {
	router := setupTemplateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Categories []struct {
			Code        string `json:"code"`
			DisplayName string `json:"display_name"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, len(models.AllCategories))
	assert.Equal(t, models.CategoryCampusCard, resp.Categories[0].Code)
	assert.Equal(t, "校园卡", resp.Categories[0].DisplayName)
}

func TestGetFieldTemplate(t *testing.T) {
	router := setupTemplateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/categories/keys/template", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var tmpl models.FieldTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tmpl))
	assert.Equal(t, models.CategoryKeys, tmpl.Category)
	assert.NotEmpty(t, tmpl.Fields)
}

func TestGetFieldTemplateUnknownCategory(t *testing.T) {
	router := setupTemplateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/categories/bicycle/template", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
