package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	commondb "messagely/internal/common/db"
	"messagely/internal/message/domain"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrUnknownUsername = errors.New("referenced username does not exist")
)

type Repository interface {
	SelectBySender(ctx context.Context, username string) ([]domain.SentMessage, error)
	SelectByRecipient(ctx context.Context, username string) ([]domain.ReceivedMessage, error)
	Insert(ctx context.Context, fromUsername, toUsername, body string, sentAt time.Time) (domain.Message, error)
	FindByID(ctx context.Context, id int64) (domain.Detail, error)
	MarkRead(ctx context.Context, id int64, readAt time.Time) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// SelectBySender returns every message sent by username, joined to the
// recipient's profile. Rows come back in sent_at order (id breaks ties); the
// source of truth never specified an order, so the stable one is documented
// here.
func (r *PgRepository) SelectBySender(ctx context.Context, username string) ([]domain.SentMessage, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages AS m
		 JOIN users AS u ON u.username = m.to_username
		 WHERE m.from_username = $1
		 ORDER BY m.sent_at ASC, m.id ASC`,
		username,
	)
	if err != nil {
		return nil, commondb.HandleExecError(err, "select messages by sender", start)
	}
	defer rows.Close()

	messages := []domain.SentMessage{}
	for rows.Next() {
		var m domain.SentMessage
		err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&m.ReadAt,
			&m.ToUser.Username,
			&m.ToUser.FirstName,
			&m.ToUser.LastName,
			&m.ToUser.Phone,
		)
		if err != nil {
			return nil, commondb.HandleExecError(err, "select messages by sender", start)
		}
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, commondb.HandleExecError(rows.Err(), "select messages by sender", start)
	}

	commondb.MeasureQueryDuration("select messages by sender", start)
	return messages, nil
}

func (r *PgRepository) SelectByRecipient(ctx context.Context, username string) ([]domain.ReceivedMessage, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages AS m
		 JOIN users AS u ON u.username = m.from_username
		 WHERE m.to_username = $1
		 ORDER BY m.sent_at ASC, m.id ASC`,
		username,
	)
	if err != nil {
		return nil, commondb.HandleExecError(err, "select messages by recipient", start)
	}
	defer rows.Close()

	messages := []domain.ReceivedMessage{}
	for rows.Next() {
		var m domain.ReceivedMessage
		err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&m.ReadAt,
			&m.FromUser.Username,
			&m.FromUser.FirstName,
			&m.FromUser.LastName,
			&m.FromUser.Phone,
		)
		if err != nil {
			return nil, commondb.HandleExecError(err, "select messages by recipient", start)
		}
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, commondb.HandleExecError(rows.Err(), "select messages by recipient", start)
	}

	commondb.MeasureQueryDuration("select messages by recipient", start)
	return messages, nil
}

func (r *PgRepository) Insert(ctx context.Context, fromUsername, toUsername, body string, sentAt time.Time) (domain.Message, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO messages (from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		fromUsername,
		toUsername,
		body,
		sentAt,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			commondb.MeasureQueryDuration("insert message", start)
			return domain.Message{}, ErrUnknownUsername
		}
		return domain.Message{}, commondb.HandleExecError(err, "insert message", start)
	}

	commondb.MeasureQueryDuration("insert message", start)
	return domain.Message{
		ID:           id,
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       sentAt,
	}, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.Detail, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        uf.username, uf.first_name, uf.last_name, uf.phone,
		        ut.username, ut.first_name, ut.last_name, ut.phone
		 FROM messages AS m
		 JOIN users AS uf ON uf.username = m.from_username
		 JOIN users AS ut ON ut.username = m.to_username
		 WHERE m.id = $1`,
		id,
	)

	var d domain.Detail
	err := row.Scan(
		&d.ID,
		&d.Body,
		&d.SentAt,
		&d.ReadAt,
		&d.FromUser.Username,
		&d.FromUser.FirstName,
		&d.FromUser.LastName,
		&d.FromUser.Phone,
		&d.ToUser.Username,
		&d.ToUser.FirstName,
		&d.ToUser.LastName,
		&d.ToUser.Phone,
	)
	if err != nil {
		return domain.Detail{}, commondb.HandleQueryError(err, ErrMessageNotFound, "find message by id", start)
	}

	commondb.MeasureQueryDuration("find message by id", start)
	return d, nil
}

func (r *PgRepository) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE messages SET read_at = $1 WHERE id = $2`,
		readAt,
		id,
	)
	if err != nil {
		return commondb.HandleExecError(err, "mark message read", start)
	}
	commondb.MeasureQueryDuration("mark message read", start)

	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
