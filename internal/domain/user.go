package domain

import (
	"time"
)

// Identity is the caller as resolved by the external identity provider.
// The provider owns its lifecycle; only the verified email is used for decisions.
type Identity struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// ProviderSession is a session issued by the identity provider after a code exchange
type ProviderSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     Identity
}
