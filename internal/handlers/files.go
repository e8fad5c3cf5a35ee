// internal/handlers/files.go
package handlers

import (
	"net/http"

	"campus-findu/internal/services"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadImage принимает фото предмета и возвращает путь, который клиент
// подставляет в image_path при подаче находки.
func (h *FileHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Image file is required",
		})
		return
	}

	path, err := h.fileService.SaveImage(c, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to save image",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"image_path": path,
	})
}
