package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
)

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// Create inserts a showtime.  The movie must exist; a missing movie
// surfaces as ErrNotFound.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	if err := r.movieExists(ctx, s.MovieID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO showtimes (movie_id, movie_date, movie_time) VALUES (?, ?, ?)",
		s.MovieID, s.Date.Format(model.DateLayout), s.Time)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func (r *ShowtimeRepo) movieExists(ctx context.Context, movieID uint64) error {
	var id uint64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM movies WHERE id = ?", movieID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// GetByID retrieves a showtime by its ID.  It returns ErrNotFound if
// there is no matching row.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	var s model.Showtime
	err := r.db.QueryRowContext(ctx,
		"SELECT id, movie_id, movie_date, movie_time FROM showtimes WHERE id = ?", id).
		Scan(&s.ID, &s.MovieID, &s.Date, &s.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListViews returns every showtime joined with its movie title, ordered by
// title, date, time and id.
func (r *ShowtimeRepo) ListViews(ctx context.Context) ([]model.ShowtimeView, error) {
	const q = `SELECT s.id, s.movie_id, s.movie_date, s.movie_time, m.title
	           FROM showtimes s
	           JOIN movies m ON m.id = s.movie_id
	           ORDER BY m.title, s.movie_date, s.movie_time, s.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ShowtimeView
	for rows.Next() {
		var v model.ShowtimeView
		if err := rows.Scan(&v.ID, &v.MovieID, &v.Date, &v.Time, &v.MovieTitle); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update moves a showtime to another movie, date or time.  Concurrent
// edits of the same showtime are last-write-wins.
func (r *ShowtimeRepo) Update(ctx context.Context, s *model.Showtime) error {
	if err := r.movieExists(ctx, s.MovieID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE showtimes SET movie_id = ?, movie_date = ?, movie_time = ? WHERE id = ?",
		s.MovieID, s.Date.Format(model.DateLayout), s.Time, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a showtime with its bookings and tickets.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) (cascade.Plan, error) {
	var plan cascade.Plan
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "showtimes", id); err != nil {
			return err
		}
		g := cascade.NewGraph()
		if err := loadBookingRefs(ctx, tx, g, "showtime_id = ?", id); err != nil {
			return err
		}
		if err := loadTicketRefs(ctx, tx, g, "showtime_id = ?", id); err != nil {
			return err
		}
		plan = cascade.ShowtimeDelete(g, id)
		return applyPlan(ctx, tx, plan)
	})
	if err != nil {
		return cascade.Plan{}, err
	}
	return plan, nil
}
