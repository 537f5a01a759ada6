package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/service"
)

type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// UploadPhoto godoc
// @Summary Upload a photo for later use in a profile or listing
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo file"
// @Success 200 {object} model.MediaUploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/media/photo [post]
func (h *MediaHandler) UploadPhoto(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperr.Validation("file is missing from the request"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, apperr.Validation("file could not be read"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(c, apperr.Validation("file could not be read"))
		return
	}

	resp, err := h.media.SavePhoto(
		c.Request.Context(),
		authCtx.User.ID,
		data,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
