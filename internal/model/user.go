package model

import "time"

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  The json tags are omitted because this
// struct never leaves the repository/service boundary as-is; handlers work
// with the sanitized projections below.  EmailHash is the one-way digest of
// the lowercased email and PasswordHash the bcrypt hash; IsAdmin gates the
// destructive operations.
type User struct {
	ID           uint64    // users.id
	EmailHash    string    // users.email_hash
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Credentials is the projection read when checking a login attempt.  It is
// the only projection that carries the password hash.
type Credentials struct {
	ID           uint64
	Username     string
	PasswordHash string
}

// PublicUser is the sanitized projection returned by the users API.
type PublicUser struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Caller is the resolved identity of an authenticated request.  It lives in
// the request context for the duration of one request and is never stored.
type Caller struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// IdentityClaim is the payload embedded as the subject of an access token.
// It intentionally carries the account id only.
type IdentityClaim struct {
	ID uint64 `json:"id"`
}
