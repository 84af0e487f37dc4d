package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/store"
	"github.com/classdesk/classdesk-api/pkg/config"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	cfg := config.SessionConfig{Secret: "test-secret", TTL: time.Hour}
	return NewAuthService(store.NewMemoryStore(nil), cfg, nil, nil)
}

func TestAuthSetupAndStatus(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	configured, err := svc.Status(ctx, "teacher")
	require.NoError(t, err)
	require.False(t, configured)

	unlock, err := svc.Setup(ctx, "teacher", PINRequest{PIN: "2468"})
	require.NoError(t, err)
	require.NotEmpty(t, unlock.Token)

	configured, err = svc.Status(ctx, "teacher")
	require.NoError(t, err)
	require.True(t, configured)

	// Second setup is refused; rotation goes through ChangePIN.
	_, err = svc.Setup(ctx, "teacher", PINRequest{PIN: "1357"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthSetupRejectsShortPIN(t *testing.T) {
	svc := newAuthFixture(t)
	_, err := svc.Setup(context.Background(), "teacher", PINRequest{PIN: "123"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthUnlock(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	// Before setup the lock reports a distinct precondition failure, not a
	// wrong-PIN rejection.
	_, err := svc.Unlock(ctx, "teacher", PINRequest{PIN: "2468"})
	require.Equal(t, appErrors.ErrPINNotSet.Code, appErrors.FromError(err).Code)

	_, err = svc.Setup(ctx, "teacher", PINRequest{PIN: "2468"})
	require.NoError(t, err)

	_, err = svc.Unlock(ctx, "teacher", PINRequest{PIN: "9999"})
	require.Equal(t, appErrors.ErrWrongPIN.Code, appErrors.FromError(err).Code)

	unlock, err := svc.Unlock(ctx, "teacher", PINRequest{PIN: "2468"})
	require.NoError(t, err)
	require.NotEmpty(t, unlock.Token)
	require.Greater(t, unlock.ExpiresAt, time.Now().Unix())
}

func TestAuthChangePIN(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Setup(ctx, "teacher", PINRequest{PIN: "2468"})
	require.NoError(t, err)

	err = svc.ChangePIN(ctx, "teacher", ChangePINRequest{CurrentPIN: "0000", NewPIN: "1357"})
	require.Equal(t, appErrors.ErrWrongPIN.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ChangePIN(ctx, "teacher", ChangePINRequest{CurrentPIN: "2468", NewPIN: "1357"}))

	_, err = svc.Unlock(ctx, "teacher", PINRequest{PIN: "2468"})
	require.Equal(t, appErrors.ErrWrongPIN.Code, appErrors.FromError(err).Code)

	_, err = svc.Unlock(ctx, "teacher", PINRequest{PIN: "1357"})
	require.NoError(t, err)
}

func TestAuthValidateToken(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	unlock, err := svc.Setup(ctx, "teacher", PINRequest{PIN: "2468"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(unlock.Token)
	require.NoError(t, err)
	require.Equal(t, "teacher", claims.UserID)

	_, err = svc.ValidateToken(unlock.Token + "tampered")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
}

func TestAuthValidateTokenWrongSecret(t *testing.T) {
	issuer := newAuthFixture(t)
	unlock, err := issuer.Setup(context.Background(), "teacher", PINRequest{PIN: "2468"})
	require.NoError(t, err)

	verifier := NewAuthService(store.NewMemoryStore(nil), config.SessionConfig{Secret: "other", TTL: time.Hour}, nil, nil)
	_, err = verifier.ValidateToken(unlock.Token)
	require.Error(t, err)
}
