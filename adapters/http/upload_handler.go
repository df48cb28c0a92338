package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mediaUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploadImageUC *mediaUC.UploadImageUseCase
	logger        logger.Logger
}

func NewUploadHandler(uc *mediaUC.UploadImageUseCase, log logger.Logger) *UploadHandler {
	return &UploadHandler{uploadImageUC: uc, logger: log}
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	target, ok := mediaUC.ParseTarget(c.PostForm("target"))
	if !ok {
		c.Error(apperror.NewInvalidInput("target must be profile, thumbnail or design", nil))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.Error(apperror.NewInvalidInput("file is larger than 10MB", nil))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	output, err := h.uploadImageUC.Execute(c.Request.Context(), mediaUC.UploadImageInput{
		File:        file,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Target:      target,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, UploadDTO{URL: output.URL, PublicID: output.PublicID})
}
