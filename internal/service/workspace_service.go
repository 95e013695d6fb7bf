package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/model"
)

// Workspace token errors.
var (
	ErrTokenInvalid = errors.New("invalid workspace token")
	ErrTokenExpired = errors.New("workspace token expired")
)

// WorkspaceClaims extends JWT standard claims with the workspace identity.
type WorkspaceClaims struct {
	jwt.RegisteredClaims
	WorkspaceID uuid.UUID `json:"workspace_id"`
}

// WorkspaceService issues and validates anonymous workspace tokens.
type WorkspaceService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(cfg *config.Config) *WorkspaceService {
	return &WorkspaceService{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry,
		now:    time.Now,
	}
}

// Issue creates a new workspace and its signed token.
func (s *WorkspaceService) Issue() (*model.Workspace, error) {
	id := uuid.New()
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := WorkspaceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		WorkspaceID: id,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &model.Workspace{ID: id, Token: signed, ExpiresAt: expiresAt.UTC()}, nil
}

// ValidateToken parses a workspace token and returns its claims.
func (s *WorkspaceService) ValidateToken(tokenStr string) (*WorkspaceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &WorkspaceClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*WorkspaceClaims)
	if !ok || !token.Valid || claims.WorkspaceID == uuid.Nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
