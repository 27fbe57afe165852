package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// UploadImage handles POST /v1/admin/upload
// It saves a product image under UploadDir and returns its public URL.
func (h *Handlers) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
		return
	}

	// 2. Create the upload directory if it doesn't exist
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		serverError(c, "Failed to prepare upload directory", err)
		return
	}

	// 3. Generate a safe unique filename (uuid + extension)
	newFilename := uuid.NewString() + ext
	savePath := filepath.Join(h.UploadDir, newFilename)

	// 4. Save the file
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		serverError(c, "Failed to save file", err)
		return
	}

	// 5. Return the public URL
	c.JSON(http.StatusOK, gin.H{
		"url": fmt.Sprintf("%s/uploads/%s", h.BaseURL, newFilename),
	})
}
