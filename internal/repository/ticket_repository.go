package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/b-cinema/internal/model"
)

// TicketRepo persists administrator-issued tickets.  The three foreign
// keys are stored as given; the schema only guarantees that each
// referenced row exists.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// Create inserts a ticket.  A duplicate ticket number yields
// ErrTicketNumberTaken.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tickets (user_id, movie_id, showtime_id, ticket_number, issued_at) VALUES (?,?,?,?,?)",
		t.UserID, t.MovieID, t.ShowtimeID, t.TicketNumber, t.IssuedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrTicketNumberTaken
		}
		if isMissingParent(err) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID returns a ticket or ErrNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, movie_id, showtime_id, ticket_number, issued_at FROM tickets WHERE id = ?", id).
		Scan(&t.ID, &t.UserID, &t.MovieID, &t.ShowtimeID, &t.TicketNumber, &t.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

const ticketViewQuery = `SELECT t.id, t.user_id, t.movie_id, t.showtime_id, t.ticket_number, t.issued_at,
                                u.name, u.email, m.title, s.movie_date, s.movie_time
                         FROM tickets t
                         JOIN users u ON u.id = t.user_id
                         JOIN movies m ON m.id = t.movie_id
                         JOIN showtimes s ON s.id = t.showtime_id`

func scanTicketView(row interface{ Scan(...any) error }) (*model.TicketView, error) {
	var v model.TicketView
	err := row.Scan(&v.ID, &v.UserID, &v.MovieID, &v.ShowtimeID, &v.TicketNumber, &v.IssuedAt,
		&v.UserName, &v.UserEmail, &v.MovieTitle, &v.ShowtimeDate, &v.ShowtimeTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// GetView returns a ticket joined with its user, movie and showtime.
func (r *TicketRepo) GetView(ctx context.Context, id uint64) (*model.TicketView, error) {
	return scanTicketView(r.db.QueryRowContext(ctx, ticketViewQuery+" WHERE t.id = ?", id))
}

// ListViews returns every ticket joined with its references, newest first.
func (r *TicketRepo) ListViews(ctx context.Context) ([]model.TicketView, error) {
	rows, err := r.db.QueryContext(ctx, ticketViewQuery+" ORDER BY t.issued_at DESC, t.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketView
	for rows.Next() {
		v, err := scanTicketView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Update rewrites the references and the number of a ticket.  IssuedAt is
// never written.
func (r *TicketRepo) Update(ctx context.Context, t *model.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET user_id = ?, movie_id = ?, showtime_id = ?, ticket_number = ? WHERE id = ?",
		t.UserID, t.MovieID, t.ShowtimeID, t.TicketNumber, t.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrTicketNumberTaken
		}
		if isMissingParent(err) {
			return ErrNotFound
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a ticket.  Nothing references tickets.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of tickets.
func (r *TicketRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets").Scan(&n)
	return n, err
}
