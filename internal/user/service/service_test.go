package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"messagely/internal/common/clock"
	commonerrors "messagely/internal/common/errors"
	"messagely/internal/common/logger"
	"messagely/internal/user/domain"
	userrepo "messagely/internal/user/repository"
)

var errMismatch = errors.New("hash mismatch")

func setupService(t *testing.T) (*Service, *mockUserRepo, *clock.MockClock) {
	t.Helper()

	repo := &mockUserRepo{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	svc := NewService(repo, &mockHasher{}, mockClock, log)
	return svc, repo, mockClock
}

func validInput() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Adams",
		Phone:     "+15551234567",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, repo, mockClock := setupService(t)

	var created domain.User
	repo.createFunc = func(ctx context.Context, user domain.User) error {
		created = user
		return nil
	}

	summary, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.Username != "alice" {
		t.Errorf("expected username alice, got %s", summary.Username)
	}
	if summary.PasswordHash != "hashed:secret1" {
		t.Errorf("expected hashed password in summary, got %s", summary.PasswordHash)
	}
	if created.PasswordHash == "secret1" {
		t.Error("plaintext password must never be persisted")
	}
	if !created.JoinAt.Equal(mockClock.Now()) {
		t.Errorf("expected join_at %v, got %v", mockClock.Now(), created.JoinAt)
	}
	if !created.JoinAt.Equal(created.LastLoginAt) {
		t.Errorf("expected join_at == last_login_at at creation, got %v and %v", created.JoinAt, created.LastLoginAt)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := setupService(t)

	testCases := []struct {
		name   string
		mutate func(in *RegisterInput)
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }},
		{"missing phone", func(in *RegisterInput) { in.Phone = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			domainErr, ok := commonerrors.AsDomainError(err)
			if !ok || domainErr.Code() != "VALIDATION_FAILED" {
				t.Errorf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, repo, _ := setupService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) error {
		return userrepo.ErrUsernameAlreadyExists
	}

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegister_StorageError(t *testing.T) {
	svc, repo, _ := setupService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) error {
		return errors.New("connection refused")
	}

	_, err := svc.Register(context.Background(), validInput())
	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok || domainErr.Code() != "DATABASE_ERROR" {
		t.Errorf("expected DATABASE_ERROR, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, repo, _ := setupService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (domain.User, error) {
		if username == "alice" {
			return domain.User{Username: "alice", PasswordHash: "hashed:secret1"}, nil
		}
		return domain.User{}, userrepo.ErrUserNotFound
	}

	testCases := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"correct credentials", "alice", "secret1", true},
		{"wrong password", "alice", "wrong", false},
		{"unknown user", "bob", "x", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tc.username, tc.password)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAuthenticate_StorageError(t *testing.T) {
	svc, repo, _ := setupService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (domain.User, error) {
		return domain.User{}, errors.New("connection refused")
	}

	ok, err := svc.Authenticate(context.Background(), "alice", "secret1")
	if ok {
		t.Error("expected false on storage error")
	}
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestRecordLogin_AdvancesTimestamp(t *testing.T) {
	svc, repo, mockClock := setupService(t)

	registeredAt := mockClock.Now()
	var recorded time.Time
	repo.updateLastLoginFunc = func(ctx context.Context, username string, at time.Time) error {
		recorded = at
		return nil
	}

	mockClock.Advance(time.Hour)

	if err := svc.RecordLogin(context.Background(), "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !recorded.After(registeredAt) {
		t.Errorf("expected last_login_at to advance past %v, got %v", registeredAt, recorded)
	}
}

func TestRecordLogin_NotFound(t *testing.T) {
	svc, repo, _ := setupService(t)

	repo.updateLastLoginFunc = func(ctx context.Context, username string, at time.Time) error {
		return userrepo.ErrUserNotFound
	}

	err := svc.RecordLogin(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetByUsername(t *testing.T) {
	svc, repo, mockClock := setupService(t)

	now := mockClock.Now()
	repo.findAccountByUsernameFunc = func(ctx context.Context, username string) (domain.Account, error) {
		if username != "alice" {
			return domain.Account{}, userrepo.ErrUserNotFound
		}
		return domain.Account{
			Username:    "alice",
			FirstName:   "Alice",
			LastName:    "Adams",
			Phone:       "+15551234567",
			JoinAt:      now,
			LastLoginAt: now,
		}, nil
	}

	account, err := svc.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account.FirstName != "Alice" || account.LastName != "Adams" || account.Phone != "+15551234567" {
		t.Errorf("unexpected profile fields: %+v", account)
	}
	if !account.JoinAt.Equal(account.LastLoginAt) {
		t.Errorf("expected join_at == last_login_at before any login, got %+v", account)
	}

	_, err = svc.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListAll(t *testing.T) {
	svc, repo, _ := setupService(t)

	repo.listAllFunc = func(ctx context.Context) ([]domain.Profile, error) {
		return []domain.Profile{
			{Username: "alice", FirstName: "Alice", LastName: "Adams", Phone: "+15551234567"},
			{Username: "bob", FirstName: "Bob", LastName: "Brown", Phone: "+15557654321"},
		}, nil
	}

	profiles, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Username != "alice" || profiles[1].Username != "bob" {
		t.Errorf("unexpected profiles: %+v", profiles)
	}
}
