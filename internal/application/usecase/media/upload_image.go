package media

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/application/service"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

// Target says what an uploaded image will be used for; it picks the sub-folder.
type Target string

const (
	TargetProfile   Target = "profile"
	TargetThumbnail Target = "thumbnail"
	TargetDesign    Target = "design"
)

func ParseTarget(s string) (Target, bool) {
	switch t := Target(s); t {
	case TargetProfile, TargetThumbnail, TargetDesign:
		return t, true
	case "":
		return TargetDesign, true
	}
	return "", false
}

type UploadImageUseCase struct {
	uploader   service.Uploader
	rootFolder string
	logger     logger.Logger
}

func NewUploadImageUseCase(u service.Uploader, rootFolder string, log logger.Logger) *UploadImageUseCase {
	return &UploadImageUseCase{uploader: u, rootFolder: rootFolder, logger: log}
}

type UploadImageInput struct {
	File        io.Reader
	ContentType string
	Target      Target
}

type UploadImageOutput struct {
	URL      string
	PublicID string
}

// Execute only hosts the image. Linking the returned URL to a profile or item is a
// separate write through the store.
func (uc *UploadImageUseCase) Execute(ctx context.Context, in UploadImageInput) (*UploadImageOutput, error) {
	if in.File == nil {
		return nil, apperror.NewInvalidInput("file is required", nil)
	}
	if !isImage(in.ContentType) {
		return nil, apperror.NewInvalidInput("only image uploads are accepted", nil)
	}

	publicID := uuid.NewString()
	folder := path.Join(uc.rootFolder, string(in.Target))

	url, err := uc.uploader.Upload(ctx, in.File, folder, publicID)
	if err != nil {
		return nil, apperror.NewTransport("failed to upload image", err)
	}

	uc.logger.Info("Image uploaded", zap.String("public_id", publicID), zap.String("folder", folder))
	return &UploadImageOutput{URL: url, PublicID: path.Join(folder, publicID)}, nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
