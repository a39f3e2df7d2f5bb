package service

import (
	"context"
	"errors"

	"messagely/internal/common/clock"
	commoncrypto "messagely/internal/common/crypto"
	commonerrors "messagely/internal/common/errors"
	"messagely/internal/common/logger"
	"messagely/internal/user/domain"
	userrepo "messagely/internal/user/repository"
)

// Service owns user records and the authentication decision. Every call is a
// request-scoped unit of work against the repository; the service keeps no
// mutable state between calls.
type Service struct {
	repo   userrepo.Repository
	hasher commoncrypto.PasswordHasher
	clock  clock.Clock
	log    *logger.Logger
}

func NewService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		clock:  clk,
		log:    log,
	}
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (domain.Summary, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateRegistration(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return domain.Summary{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return domain.Summary{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		JoinAt:       now,
		LastLoginAt:  now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return domain.Summary{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return domain.Summary{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"action":   "register_success",
	}).Info("register success")

	return domain.Summary{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
	}, nil
}

// Authenticate reports whether the credentials match. An unknown username and
// a wrong password are the same false so callers cannot probe for accounts.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return false, nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "authenticate_fetch_failed",
		}).Errorf("authenticate failed: %v", err)
		return false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return false, nil
	}

	return true, nil
}

// RecordLogin must only be called after a successful Authenticate. The pair
// is not atomic: a row removed in between surfaces here as ErrUserNotFound.
func (s *Service) RecordLogin(ctx context.Context, username string) error {
	err := s.repo.UpdateLastLogin(ctx, username, s.clock.Now())
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "record_login_user_not_found",
			}).Warn("record login failed: not found")
			return ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "record_login_failed",
		}).Errorf("record login failed: %v", err)
		return commonerrors.ErrDatabaseError.WithCause(err)
	}
	return nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Errorf("list users failed: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return profiles, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	account, err := s.repo.FindAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return domain.Account{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "get_user_failed",
		}).Errorf("get user failed: %v", err)
		return domain.Account{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return account, nil
}
