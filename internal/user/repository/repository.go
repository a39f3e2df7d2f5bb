package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	commondb "messagely/internal/common/db"
	"messagely/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindAccountByUsername(ctx context.Context, username string) (domain.Account, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	ListAll(ctx context.Context) ([]domain.Profile, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinAt,
		user.LastLoginAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			commondb.MeasureQueryDuration("create user", start)
			return ErrUsernameAlreadyExists
		}
	}
	return commondb.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return domain.User{}, commondb.HandleQueryError(err, ErrUserNotFound, "find user by username", start)
	}

	commondb.MeasureQueryDuration("find user by username", start)
	return user, nil
}

func (r *PgRepository) FindAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT username, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = $1`,
		username,
	)

	var account domain.Account
	err := row.Scan(
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Phone,
		&account.JoinAt,
		&account.LastLoginAt,
	)
	if err != nil {
		return domain.Account{}, commondb.HandleQueryError(err, ErrUserNotFound, "find account by username", start)
	}

	commondb.MeasureQueryDuration("find account by username", start)
	return account, nil
}

func (r *PgRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET last_login_at = $1 WHERE username = $2`,
		at,
		username,
	)
	if err != nil {
		return commondb.HandleExecError(err, "update last login", start)
	}
	commondb.MeasureQueryDuration("update last login", start)

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) ListAll(ctx context.Context) ([]domain.Profile, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT username, first_name, last_name, phone FROM users`,
	)
	if err != nil {
		return nil, commondb.HandleExecError(err, "list users", start)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone); err != nil {
			return nil, commondb.HandleExecError(err, "list users", start)
		}
		profiles = append(profiles, p)
	}

	if rows.Err() != nil {
		return nil, commondb.HandleExecError(rows.Err(), "list users", start)
	}

	commondb.MeasureQueryDuration("list users", start)
	return profiles, nil
}
