package model

import "time"

// Role names stored in users.role.  They are compared verbatim against the
// role carried by a session.
const (
    RoleCustomer = "Customer"
    RoleAdmin    = "Admin"
)

// User represents an account as stored in the `users` table.  The json
// tags are omitted because handlers define their own response types.
//
// Email is meant to be unique but only registration checks it; accounts
// created or edited by an administrator are stored as given.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown in the session and in listings.
//  Email        – login address.
//  PasswordHash – hex digest produced by the credential hasher.
//  Role         – RoleCustomer or RoleAdmin.
//  IsSystem     – marks the protected seed account.  System accounts are
//                 hidden from management listings and cannot be edited or
//                 deleted through the admin surface.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsSystem     bool      // users.is_system
    CreatedAt    time.Time // users.created_at
}

// IsAdmin reports whether the account carries the Admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidRole reports whether r is one of the known role names.
func ValidRole(r string) bool { return r == RoleCustomer || r == RoleAdmin }
