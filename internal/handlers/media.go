package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecobazaar/internal/service"
	"ecobazaar/internal/storage"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 64 << 10

func (h HandlerSet) UploadImage(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.HTTP.MaxUploadBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file_too_large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request.Context(), id, service.UploadInput{
		Header: header.Header,
		Body:   file,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", id.UserID).Str("filename", header.Filename).Msg("upload failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": result.URL})
}

func (h HandlerSet) ServeUpload(c *gin.Context) {
	key, ok := storage.KeyFromURL(storage.PublicPrefix + strings.TrimPrefix(c.Param("key"), "/"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	body, info, err := h.objects.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		respondError(c, err)
		return
	}
	defer body.Close()

	headers := map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"X-Content-Type-Options": "nosniff",
	}
	if info.ContentType == "image/svg+xml" {
		headers["Content-Security-Policy"] = "default-src 'none'; style-src 'unsafe-inline'"
	}
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, body, headers)
}
