package auth

import (
	"errors"

	"github.com/iliyamo/b-cinema/internal/model"
)

var (
	// ErrUnauthorized means the caller lacks the role an operation needs.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrProtectedAccount means the target is a system account.
	ErrProtectedAccount = errors.New("account is protected")
)

// RequireLogin passes any authenticated caller.
func RequireLogin(p Principal) error {
	if p.Anonymous() {
		return ErrUnauthorized
	}
	return nil
}

// RequireAdmin passes authenticated administrators only.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// RequireManageable runs the two administrative checks in order: the
// caller must be an administrator, then the target must not be a system
// account.  target may be nil when the row does not exist; that case is
// left to the caller.
func RequireManageable(p Principal, target *model.User) error {
	if err := RequireAdmin(p); err != nil {
		return err
	}
	if target != nil && target.IsSystem {
		return ErrProtectedAccount
	}
	return nil
}
