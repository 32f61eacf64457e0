package handler

import (
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// savePostImage validates and stores an uploaded post image, returning the
// public URL. The decode-config pass rejects files that merely claim an
// image content type.
func (a *API) savePostImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if _, _, err := image.DecodeConfig(src); err != nil {
		return "", fmt.Errorf("not a decodable image: %w", err)
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, name)); err != nil {
		return "", err
	}

	return a.uploadURL + "/" + name, nil
}

// UploadImage is the standalone upload endpoint used by the post editor.
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image in request"})
		return
	}

	url, err := a.savePostImage(c, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a valid image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
