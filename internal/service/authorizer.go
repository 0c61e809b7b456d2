package service

import (
	"errors"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

// Authorizer decides whether an identity is the site administrator.
// It is the single source of truth for every protected operation.
type Authorizer struct {
	adminEmail string
}

// NewAuthorizer creates an authorizer for the configured administrator address
func NewAuthorizer(adminEmail string) *Authorizer {
	return &Authorizer{adminEmail: adminEmail}
}

// IsAuthorized reports whether email is exactly the administrator address.
// Matching is case-sensitive with no wildcard or domain rules.
func (a *Authorizer) IsAuthorized(email string) bool {
	return a.adminEmail != "" && email == a.adminEmail
}

// Authorize returns Unauthorized for a missing identity and Forbidden for a non-admin one
func (a *Authorizer) Authorize(op string, identity *domain.Identity) error {
	if identity == nil || identity.Email == "" {
		return domain.NewError(domain.KindUnauthorized, op, errors.New("no authenticated identity"))
	}
	if !a.IsAuthorized(identity.Email) {
		return domain.NewError(domain.KindForbidden, op, errors.New("identity is not the administrator"))
	}
	return nil
}
