package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/b-cinema/internal/cascade"
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// mysqlMissingParent is raised when an insert or update names a parent row
// that does not exist.
const mysqlMissingParent = 1452

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func isMissingParent(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlMissingParent
}

// inList expands ids into a "?,?,?" placeholder list and its arguments.
func inList(ids []uint64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}

// applyPlan deletes the rows listed in p, children first so that the
// RESTRICT foreign keys of the schema are never violated.
func applyPlan(ctx context.Context, tx *sql.Tx, p cascade.Plan) error {
	steps := []struct {
		table string
		ids   []uint64
	}{
		{"tickets", p.Tickets},
		{"bookings", p.Bookings},
		{"showtimes", p.Showtimes},
		{"movies", p.Movies},
		{"users", p.Users},
	}
	for _, s := range steps {
		if len(s.ids) == 0 {
			continue
		}
		marks, args := inList(s.ids)
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE id IN ("+marks+")", args...); err != nil {
			return err
		}
	}
	return nil
}

// loadBookingRefs adds the bookings matched by where/args to g.
func loadBookingRefs(ctx context.Context, tx *sql.Tx, g cascade.Graph, where string, args ...any) error {
	rows, err := tx.QueryContext(ctx, "SELECT id, user_id, showtime_id FROM bookings WHERE "+where, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var ref cascade.BookingRef
		if err := rows.Scan(&id, &ref.UserID, &ref.ShowtimeID); err != nil {
			return err
		}
		g.Bookings[id] = ref
	}
	return rows.Err()
}

// loadTicketRefs adds the tickets matched by where/args to g.
func loadTicketRefs(ctx context.Context, tx *sql.Tx, g cascade.Graph, where string, args ...any) error {
	rows, err := tx.QueryContext(ctx, "SELECT id, user_id, movie_id, showtime_id FROM tickets WHERE "+where, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var ref cascade.TicketRef
		if err := rows.Scan(&id, &ref.UserID, &ref.MovieID, &ref.ShowtimeID); err != nil {
			return err
		}
		g.Tickets[id] = ref
	}
	return rows.Err()
}

// lockRow checks that the row exists and locks it for the rest of tx.
func lockRow(ctx context.Context, tx *sql.Tx, table string, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE id = ? FOR UPDATE", id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
