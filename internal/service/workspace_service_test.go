package service

import (
	"errors"
	"testing"
	"time"

	"github.com/gradedesk/gradedesk/internal/config"
)

func newTestWorkspaceService() *WorkspaceService {
	return NewWorkspaceService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestWorkspaceService()

	ws, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.ValidateToken(ws.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.WorkspaceID != ws.ID {
		t.Errorf("expected workspace %s, got %s", ws.ID, claims.WorkspaceID)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	ws, err := newTestWorkspaceService().Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewWorkspaceService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})
	if _, err := other.ValidateToken(ws.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := other.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newTestWorkspaceService()
	ws, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(ws.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
