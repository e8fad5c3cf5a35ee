// internal/services/file.go
package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileService складывает загруженные фото предметов в каталог uploads.
type FileService struct {
	uploadDir   string
	maxFileSize int64
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func NewFileService(uploadDir string, maxFileSize int64) *FileService {
	return &FileService{
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
	}
}

// SaveImage сохраняет файл под случайным именем и возвращает
// относительный путь для image_path предмета.
func (fs *FileService) SaveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > fs.maxFileSize {
		return "", fmt.Errorf("file too large: %d bytes", file.Size)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("unsupported file extension: %s", ext)
	}

	if err := os.MkdirAll(fs.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(fs.uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}

	return "/uploads/" + name, nil
}

// Delete удаляет ранее загруженный файл по его публичному пути.
func (fs *FileService) Delete(publicPath string) error {
	name := filepath.Base(publicPath)
	if name == "." || name == "/" {
		return fmt.Errorf("invalid file path")
	}
	return os.Remove(filepath.Join(fs.uploadDir, name))
}
