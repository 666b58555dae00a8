package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type uploadByLinkRequest struct {
	Link string `json:"link" binding:"required"`
}

// POST /upload-by-link downloads a remote image into photo storage and
// returns the generated filename.
func (s *Server) uploadByLink(c *gin.Context) {
	var req uploadByLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	name, err := s.photos.SaveFromURL(c.Request.Context(), req.Link)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, name)
}

// POST /upload accepts one or more files in the multipart field "photos"
// and returns the list of stored filenames in upload order.
func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid multipart form", "code": "validation_error"})
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no photos attached", "code": "validation_error"})
		return
	}

	names := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.handleError(c, err)
			return
		}

		name, err := s.photos.SaveUpload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
		f.Close()
		if err != nil {
			s.handleError(c, err)
			return
		}
		names = append(names, name)
	}

	c.JSON(http.StatusOK, names)
}
