package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
)

const userColumns = "id, name, email, password_hash, role, is_system, created_at"

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsSystem, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts u and fills in its ID and CreatedAt.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, is_system, created_at) VALUES (?,?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.Role, u.IsSystem, u.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// GetSystem returns the oldest system account.
func (r *UserRepo) GetSystem(ctx context.Context) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_system = 1 ORDER BY id LIMIT 1"))
}

// EmailExists reports whether any account uses email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&n)
	return n > 0, err
}

// FindByCredentials returns the first user (lowest id) whose email and
// password digest both match.
func (r *UserRepo) FindByCredentials(ctx context.Context, email, passwordHash string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? AND password_hash = ? ORDER BY id LIMIT 1",
		email, passwordHash))
}

// ListManageable returns every non-system account ordered by id.
func (r *UserRepo) ListManageable(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE is_system = 0 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// CountManageable counts non-system accounts.
func (r *UserRepo) CountManageable(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE is_system = 0").Scan(&n)
	return n, err
}

// Update overwrites name, email, role and password digest.  Concurrent
// updates are last-write-wins.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, role = ?, password_hash = ? WHERE id = ?",
		u.Name, u.Email, u.Role, u.PasswordHash, u.ID)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, u.ID)
}

// checkAffected distinguishes "no such row" from "row unchanged", which
// MySQL both report as zero affected rows.
func (r *UserRepo) checkAffected(ctx context.Context, res sql.Result, id uint64) error {
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err := r.GetByID(ctx, id)
	return err
}

// Delete removes a user that no booking or ticket references.  It returns
// ErrConflict otherwise; bookings are never removed with their user.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "users", id); err != nil {
			return err
		}
		g := cascade.NewGraph()
		if err := loadBookingRefs(ctx, tx, g, "user_id = ?", id); err != nil {
			return err
		}
		if err := loadTicketRefs(ctx, tx, g, "user_id = ?", id); err != nil {
			return err
		}
		plan, err := cascade.UserDelete(g, id)
		if errors.Is(err, cascade.ErrRestricted) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		return applyPlan(ctx, tx, plan)
	})
}
