package domain

import (
	"time"

	userdomain "messagely/internal/user/domain"
)

// Message is a directed communication between two identities. Rows are
// immutable once created except for ReadAt.
type Message struct {
	ID           int64
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// SentMessage is a message viewed from the sender's side, with the
// recipient's current profile embedded.
type SentMessage struct {
	ID     int64
	Body   string
	SentAt time.Time
	ReadAt *time.Time
	ToUser userdomain.Profile
}

// ReceivedMessage is the symmetric view embedding the sender's profile.
type ReceivedMessage struct {
	ID       int64
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
	FromUser userdomain.Profile
}

// Detail is a single message with both counterpart profiles resolved.
type Detail struct {
	ID       int64
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
	FromUser userdomain.Profile
	ToUser   userdomain.Profile
}
