package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	"github.com/classdesk/classdesk-api/pkg/config"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// PINRequest carries the 4-digit access code.
type PINRequest struct {
	PIN string `json:"pin" validate:"required,min=4"`
}

// ChangePINRequest rotates the access code after verifying the old one.
type ChangePINRequest struct {
	CurrentPIN string `json:"currentPin" validate:"required,min=4"`
	NewPIN     string `json:"newPin" validate:"required,min=4"`
}

// AuthService implements the PIN gate. The PIN is a convenience lock for a
// shared classroom machine, not an account credential, so it is stored as
// entered and compared directly.
type AuthService struct {
	store     store.Store
	cfg       config.SessionConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates an auth service instance.
func NewAuthService(st store.Store, cfg config.SessionConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{store: st, cfg: cfg, validator: validate, logger: logger, now: time.Now}
}

// Status reports whether a PIN has been configured yet. First run returns
// false so the client can show the setup screen instead of the lock.
func (s *AuthService) Status(ctx context.Context, userID string) (bool, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return false, err
	}
	return doc.Password != "", nil
}

// Setup stores the initial PIN. Refused once a PIN exists; use ChangePIN.
func (s *AuthService) Setup(ctx context.Context, userID string, req PINRequest) (*models.UnlockResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "pin must be at least 4 characters")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Password != "" {
		return nil, appErrors.Clone(appErrors.ErrConflict, "pin already configured")
	}
	err = s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldPassword: req.PIN,
	})
	if err != nil {
		return nil, err
	}
	return s.issueToken(userID)
}

// Unlock verifies the PIN and issues a session token. A wrong PIN and an
// unreachable store are distinct failures: the first is the user's problem,
// the second is ours.
func (s *AuthService) Unlock(ctx context.Context, userID string, req PINRequest) (*models.UnlockResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "pin must be at least 4 characters")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrPINNotSet, "no pin configured yet")
	}
	if doc.Password != req.PIN {
		return nil, appErrors.ErrWrongPIN
	}
	return s.issueToken(userID)
}

// ChangePIN rotates the stored PIN after verifying the current one.
func (s *AuthService) ChangePIN(ctx context.Context, userID string, req ChangePINRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "pin must be at least 4 characters")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if doc.Password == "" {
		return appErrors.Clone(appErrors.ErrPINNotSet, "no pin configured yet")
	}
	if doc.Password != req.CurrentPIN {
		return appErrors.ErrWrongPIN
	}
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldPassword: req.NewPIN,
	})
}

func (s *AuthService) issueToken(userID string) (*models.UnlockResponse, error) {
	expires := s.now().Add(s.cfg.TTL)
	claims := models.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not sign session token")
	}
	return &models.UnlockResponse{Token: signed, ExpiresAt: expires.Unix()}, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(token string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired session token")
	}
	return claims, nil
}
