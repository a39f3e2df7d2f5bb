package service

import (
	"context"

	"messagely/internal/common/logger"
	"messagely/internal/observability/metrics"
	userservice "messagely/internal/user/service"
)

// AuthService maps the transport-level login/register operations onto the
// user service and the token issuer.
type AuthService struct {
	users  *userservice.Service
	issuer *TokenIssuer
	log    *logger.Logger
}

func NewAuthService(users *userservice.Service, issuer *TokenIssuer, log *logger.Logger) *AuthService {
	return &AuthService{
		users:  users,
		issuer: issuer,
		log:    log,
	}
}

type LoginInput struct {
	Username string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	ok, err := s.users.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_credentials",
		}).Warn("login failed: invalid credentials")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", ErrInvalidCredentials
	}

	if err := s.users.RecordLogin(ctx, input.Username); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	token, err := s.issuer.Issue(input.Username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return token, nil
}

// Register creates the identity and authenticates it in one step: the new
// user gets a session token directly, no separate login required. The hash
// in the registration summary is discarded here.
func (s *AuthService) Register(ctx context.Context, input userservice.RegisterInput) (string, error) {
	summary, err := s.users.Register(ctx, input)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(summary.Username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": summary.Username,
			"action":   "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return "", err
	}

	metrics.RegistrationsTotal.Inc()
	return token, nil
}
