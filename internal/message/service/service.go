package service

import (
	"context"
	"errors"
	"time"

	"messagely/internal/common/clock"
	commonerrors "messagely/internal/common/errors"
	"messagely/internal/common/logger"
	"messagely/internal/message/domain"
	messagerepo "messagely/internal/message/repository"
	"messagely/internal/observability/metrics"
)

// Service answers directional queries over the message relation and owns the
// message lifecycle. The directional reads are pure: a user with no messages
// gets an empty slice, never an error.
type Service struct {
	repo  messagerepo.Repository
	clock clock.Clock
	log   *logger.Logger
}

func NewService(repo messagerepo.Repository, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		clock: clk,
		log:   log,
	}
}

func (s *Service) SentBy(ctx context.Context, username string) ([]domain.SentMessage, error) {
	messages, err := s.repo.SelectBySender(ctx, username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "messages_sent_by_failed",
		}).Errorf("messages sent by failed: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return messages, nil
}

func (s *Service) ReceivedBy(ctx context.Context, username string) ([]domain.ReceivedMessage, error) {
	messages, err := s.repo.SelectByRecipient(ctx, username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "messages_received_by_failed",
		}).Errorf("messages received by failed: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return messages, nil
}

// Send creates a message from fromUsername to toUsername. Self-messaging is
// permitted; the body is opaque text.
func (s *Service) Send(ctx context.Context, fromUsername, toUsername, body string) (domain.Message, error) {
	if body == "" {
		return domain.Message{}, ErrEmptyBody
	}
	if toUsername == "" {
		return domain.Message{}, ErrRecipientNotFound
	}

	message, err := s.repo.Insert(ctx, fromUsername, toUsername, body, s.clock.Now())
	if err != nil {
		if errors.Is(err, messagerepo.ErrUnknownUsername) {
			s.log.WithFields(ctx, logger.Fields{
				"from":   fromUsername,
				"to":     toUsername,
				"action": "send_message_unknown_recipient",
			}).Warn("send message failed: unknown recipient")
			return domain.Message{}, ErrRecipientNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"from":   fromUsername,
			"to":     toUsername,
			"action": "send_message_failed",
		}).Errorf("send message failed: %v", err)
		return domain.Message{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.MessagesSentTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"message_id": message.ID,
		"from":       fromUsername,
		"to":         toUsername,
		"action":     "send_message_success",
	}).Info("message sent")

	return message, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Detail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, messagerepo.ErrMessageNotFound) {
			return domain.Detail{}, ErrMessageNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"message_id": id,
			"action":     "get_message_failed",
		}).Errorf("get message failed: %v", err)
		return domain.Detail{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return detail, nil
}

// MarkRead stamps read_at and returns the timestamp written.
func (s *Service) MarkRead(ctx context.Context, id int64) (time.Time, error) {
	readAt := s.clock.Now()
	if err := s.repo.MarkRead(ctx, id, readAt); err != nil {
		if errors.Is(err, messagerepo.ErrMessageNotFound) {
			return time.Time{}, ErrMessageNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"message_id": id,
			"action":     "mark_read_failed",
		}).Errorf("mark message read failed: %v", err)
		return time.Time{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.MessagesReadTotal.Inc()
	return readAt, nil
}
