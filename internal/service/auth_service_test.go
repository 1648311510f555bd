package service

import (
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/sla-analytics/internal/auth"
	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/domain"
)

func TestAuthServiceIssueToken(t *testing.T) {
	svc := newTestAuthService(t)

	token, expiresAt, err := svc.IssueToken("reporter", "s3cret")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if expiresAt.IsZero() {
		t.Fatal("expected an expiry")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.ClientID != "reporter" {
		t.Fatalf("expected client reporter, got %q", claims.ClientID)
	}
	if claims.Role != domain.ClientRoleOperator {
		t.Fatalf("expected operator role, got %q", claims.Role)
	}
}

func TestAuthServiceRejectsBadSecret(t *testing.T) {
	svc := newTestAuthService(t)
	if _, _, err := svc.IssueToken("reporter", "wrong"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestAuthServiceRejectsUnknownClient(t *testing.T) {
	svc := newTestAuthService(t)
	if _, _, err := svc.IssueToken("ghost", "s3cret"); err == nil {
		t.Fatal("expected error for unknown client")
	}
}

func TestParseClientsSkipsMalformedEntries(t *testing.T) {
	clients := parseClients("broken-entry, dash:viewer:$2a$04$hash ,", zap.NewNop())
	if len(clients) != 1 {
		t.Fatalf("expected one parsed client, got %d", len(clients))
	}
	client, ok := clients["dash"]
	if !ok {
		t.Fatal("expected client dash to be parsed")
	}
	if client.Role != domain.ClientRoleViewer {
		t.Fatalf("expected viewer role, got %q", client.Role)
	}
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := auth.HashSecret("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
		Clients:               "reporter:operator:" + hash,
	}
	return NewAuthService(cfg, zap.NewNop())
}
