package auth

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/auth"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

var ErrInvalidCredentials = errors.New("password is incorrect")

// LoginUseCase gates the admin surface behind a single configured password.
type LoginUseCase struct {
	passwordHash string
	jwtSvc       *auth.JWTService
	logger       logger.Logger
}

func NewLoginUseCase(passwordHash string, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		passwordHash: passwordHash,
		jwtSvc:       jwtSvc,
		logger:       log,
	}
}

type LoginInput struct {
	Password string
}

type LoginOutput struct {
	AccessToken string
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	_, span := tracer.Start(ctx, "Execute")
	defer span.End()

	if uc.passwordHash == "" {
		err := apperror.NewPermissionDenied("admin password is not configured")
		span.RecordError(err)
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, uc.passwordHash) {
		err := apperror.NewUnauthorized("incorrect password", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateAdminToken()
	if err != nil {
		uc.logger.Error("Failed to generate admin token", err)
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	uc.logger.Info("Admin logged in")
	return &LoginOutput{AccessToken: token}, nil
}
