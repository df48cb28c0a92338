package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/auth"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

func TestLoginUseCase(t *testing.T) {
	hash, err := auth.HashPassword("letmein")
	require.NoError(t, err)
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	uc := NewLoginUseCase(hash, jwtSvc, logger.NewNop())
	ctx := context.Background()

	out, err := uc.Execute(ctx, LoginInput{Password: "letmein"})
	require.NoError(t, err)
	_, err = jwtSvc.ValidateToken(out.AccessToken)
	assert.NoError(t, err)

	_, err = uc.Execute(ctx, LoginInput{Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = NewLoginUseCase("", jwtSvc, logger.NewNop()).Execute(ctx, LoginInput{Password: "letmein"})
	assert.ErrorIs(t, err, apperror.ErrPermission)
}
