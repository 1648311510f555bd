package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/auth"
	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/pkg/util"
)

// AuthService exchanges configured client credentials for API tokens.
type AuthService struct {
	clients  map[string]domain.APIClient
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
}

// NewAuthService parses the configured client list and builds the service.
func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		clients:  parseClients(cfg.Clients, logger),
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		logger:   logger,
	}
}

// IssueToken verifies client credentials and returns a signed token.
func (s *AuthService) IssueToken(clientID, secret string) (string, time.Time, error) {
	client, ok := s.clients[clientID]
	if ok {
		if err := auth.CompareSecret(client.SecretHash, secret); err == nil {
			return s.tokenMgr.GenerateToken(client)
		}
	}
	return "", time.Time{}, util.NewUnauthorized("invalid client credentials")
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// parseClients reads "id:role:bcrypt-hash" triples separated by commas.
// bcrypt hashes contain no colon, so a plain split is safe.
func parseClients(raw string, logger *zap.Logger) map[string]domain.APIClient {
	clients := make(map[string]domain.APIClient)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			logger.Warn("skipping malformed client entry", zap.String("entry", entry))
			continue
		}
		var role domain.ClientRole
		switch strings.ToUpper(parts[1]) {
		case string(domain.ClientRoleOperator):
			role = domain.ClientRoleOperator
		case string(domain.ClientRoleViewer):
			role = domain.ClientRoleViewer
		default:
			logger.Warn("unknown client role, defaulting to viewer",
				zap.String("client", parts[0]),
				zap.String("role", parts[1]))
			role = domain.ClientRoleViewer
		}
		clients[parts[0]] = domain.APIClient{ID: parts[0], Role: role, SecretHash: parts[2]}
	}
	return clients
}
