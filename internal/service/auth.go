package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
	"srm-agent-portal/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type LoginResult struct {
	Agent       *domain.Agent `json:"agent"`
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

type authService struct {
	agentRepo repository.AgentRepository
	tokens    security.TokenManager
}

func NewAuthService(agentRepo repository.AgentRepository, tokens security.TokenManager) AuthService {
	return &authService{
		agentRepo: agentRepo,
		tokens:    tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	agent, err := s.agentRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Login rejected", "agentID", agent.ID)
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.GenerateAccessToken(agent.ID, agent.Email)
	if err != nil {
		return nil, err
	}

	logger.Info("Agent logged in", "agentID", agent.ID)
	return &LoginResult{Agent: agent, AccessToken: token, ExpiresAt: expires}, nil
}

// HashPassword returns the bcrypt hash stored for an agent.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
