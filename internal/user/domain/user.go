package domain

import "time"

// User is the stored identity record. PasswordHash never crosses the user
// service boundary.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinAt       time.Time
	LastLoginAt  time.Time
}

// Profile is the public-facing subset used in listings and message joins.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Account is the full public view of a user, timestamps included.
type Account struct {
	Username    string
	FirstName   string
	LastName    string
	Phone       string
	JoinAt      time.Time
	LastLoginAt time.Time
}

// Summary is what Register reports back to its caller. The hash is carried
// only so the caller can discard it; it must not be serialized outward.
type Summary struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
}
