package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/metrics"
	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/utils"
)

// Landing pages after login.
const (
	AdminLanding    = "/admin/dashboard"
	CustomerLanding = "/movies"
)

// Identity registers accounts, opens and closes sessions and lets
// administrators manage non-system users.
type Identity struct {
	Users    UserStore
	Sessions auth.SessionStore
	Hasher   Hasher
	// Secret signs session tokens; TokenTTL bounds their absolute lifetime
	// while the session store enforces the idle timeout.
	Secret   string
	TokenTTL time.Duration
}

// RegisterInput is the self-service sign-up form.
type RegisterInput struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=200"`
}

// UserInput is the administrator's create/edit form.  Password is required
// on create; on edit an empty password keeps the stored digest.
type UserInput struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"max=200"`
	Role     string `json:"role" form:"role" validate:"required,oneof=Customer Admin"`
}

// LoginResult is a freshly opened session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal auth.Principal
	Landing   string
}

// Landing returns where a user with role lands after login.
func Landing(role string) string {
	if role == model.RoleAdmin {
		return AdminLanding
	}
	return CustomerLanding
}

// Register creates a Customer account.  It does not log the user in.
func (s *Identity) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := check(in).orNil(); err != nil {
		return nil, err
	}
	taken, err := s.Users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}
	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: s.Hasher.Hash(in.Password),
		Role:         model.RoleCustomer,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and opens a session.  No session is created
// on failure.
func (s *Identity) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}
	u, err := s.Users.FindByCredentials(ctx, email, s.Hasher.Hash(password))
	if errors.Is(err, ErrNotFound) {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	sid, err := s.Sessions.Create(ctx, auth.Session{UserID: u.ID, UserName: u.Name, UserRole: u.Role})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	tok, err := utils.NewSessionToken(s.Secret, sid, s.TokenTTL)
	if err != nil {
		_ = s.Sessions.Delete(ctx, sid)
		return nil, fmt.Errorf("sign session: %w", err)
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	return &LoginResult{
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		Principal: auth.Principal{SessionID: sid, UserID: u.ID, UserName: u.Name, Role: u.Role},
		Landing:   Landing(u.Role),
	}, nil
}

// Resolve maps a session token to its principal.  Unknown, expired or
// forged tokens resolve to the anonymous principal without error.
func (s *Identity) Resolve(ctx context.Context, token string) (auth.Principal, error) {
	if token == "" {
		return auth.Principal{}, nil
	}
	sid, err := utils.ParseSessionToken(s.Secret, token)
	if err != nil {
		return auth.Principal{}, nil
	}
	sess, err := s.Sessions.Get(ctx, sid)
	if errors.Is(err, auth.ErrNoSession) {
		return auth.Principal{}, nil
	}
	if err != nil {
		return auth.Principal{}, fmt.Errorf("load session: %w", err)
	}
	return auth.Principal{SessionID: sid, UserID: sess.UserID, UserName: sess.UserName, Role: sess.UserRole}, nil
}

// Logout ends the caller's session.  It succeeds when there is none.
func (s *Identity) Logout(ctx context.Context, p auth.Principal) error {
	if p.SessionID == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, p.SessionID)
}

// EnsureSystemAccount seeds the protected administrator if no system
// account exists yet.  It returns the existing or created account, or nil
// when none exists and password is empty.
func (s *Identity) EnsureSystemAccount(ctx context.Context, name, email, password string) (*model.User, error) {
	u, err := s.Users.GetSystem(ctx)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load system account: %w", err)
	}
	if password == "" {
		return nil, nil
	}
	u = &model.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: s.Hasher.Hash(password),
		Role:         model.RoleAdmin,
		IsSystem:     true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create system account: %w", err)
	}
	return u, nil
}

// ListUsers returns every manageable account.
func (s *Identity) ListUsers(ctx context.Context, p auth.Principal) ([]model.User, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.Users.ListManageable(ctx)
}

// target loads a user for an administrative operation after the role check.
func (s *Identity) target(ctx context.Context, p auth.Principal, id uint64) (*model.User, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireManageable(p, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a manageable account.
func (s *Identity) GetUser(ctx context.Context, p auth.Principal, id uint64) (*model.User, error) {
	return s.target(ctx, p, id)
}

// AddUser creates an account with any role.  Email uniqueness is not
// enforced here.
func (s *Identity) AddUser(ctx context.Context, p auth.Principal, in UserInput) (*model.User, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	ve := check(in)
	if in.Password == "" {
		ve.add("password", "is required")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}
	u := &model.User{Name: in.Name, Email: in.Email, Role: in.Role, PasswordHash: s.Hasher.Hash(in.Password)}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// EditUser overwrites name, email and role, and the password when one is
// given.
func (s *Identity) EditUser(ctx context.Context, p auth.Principal, id uint64, in UserInput) (*model.User, error) {
	u, err := s.target(ctx, p, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := check(in).orNil(); err != nil {
		return nil, err
	}
	u.Name, u.Email, u.Role = in.Name, in.Email, in.Role
	if in.Password != "" {
		u.PasswordHash = s.Hasher.Hash(in.Password)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser removes an account that nothing references.
func (s *Identity) DeleteUser(ctx context.Context, p auth.Principal, id uint64) error {
	if _, err := s.target(ctx, p, id); err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	metrics.CascadeDeleted.WithLabelValues("users").Inc()
	return nil
}
