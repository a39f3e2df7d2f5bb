package service

import (
	"context"
	"time"

	"messagely/internal/user/domain"
	userrepo "messagely/internal/user/repository"
)

type mockUserRepo struct {
	createFunc                func(ctx context.Context, user domain.User) error
	findByUsernameFunc        func(ctx context.Context, username string) (domain.User, error)
	findAccountByUsernameFunc func(ctx context.Context, username string) (domain.Account, error)
	updateLastLoginFunc       func(ctx context.Context, username string, at time.Time) error
	listAllFunc               func(ctx context.Context) ([]domain.Profile, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	if m.findAccountByUsernameFunc != nil {
		return m.findAccountByUsernameFunc(ctx, username)
	}
	return domain.Account{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	if m.updateLastLoginFunc != nil {
		return m.updateLastLoginFunc(ctx, username, at)
	}
	return nil
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]domain.Profile, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash == "hashed:"+password {
		return nil
	}
	return errMismatch
}
