// Package repository contains data access logic separated from HTTP handlers.
// This file defines the movie repository.  Deleting a movie removes its
// showtimes together with their bookings and tickets inside one
// transaction; the rows to remove are computed by package cascade.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
)

const movieColumns = "id, title, description, duration_min, price_cents, image_path, created_at"

// MovieRepo encapsulates all queries related to movies.
type MovieRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var (
		m     model.Movie
		desc  sql.NullString
		image sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Title, &desc, &m.DurationMin, &m.PriceCents, &image, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.Description = desc.String
	if image.Valid {
		m.ImagePath = &image.String
	}
	return &m, nil
}

// Create inserts a new movie and populates its ID and CreatedAt.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, description, duration_min, price_cents, image_path, created_at) VALUES (?,?,?,?,?,?)",
		m.Title, m.Description, m.DurationMin, m.PriceCents, m.ImagePath, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a movie by its ID.  It returns ErrNotFound if no row is found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
}

// List returns all movies ordered by id.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of movies.
func (r *MovieRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n)
	return n, err
}

// Update overwrites the editable fields of a movie.  It returns
// ErrNotFound when the movie does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies
	           SET title = ?, description = ?, duration_min = ?, price_cents = ?, image_path = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.PriceCents, m.ImagePath, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows also means "nothing changed"; confirm the row exists
		if _, err := r.GetByID(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movie and everything its showtimes own.  It returns
// ErrNotFound when the movie does not exist and ErrConflict when a ticket
// of another movie's showtime still names this movie.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) (cascade.Plan, error) {
	var plan cascade.Plan
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "movies", id); err != nil {
			return err
		}
		g := cascade.NewGraph()
		rows, err := tx.QueryContext(ctx, "SELECT id FROM showtimes WHERE movie_id = ?", id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var sid uint64
			if err := rows.Scan(&sid); err != nil {
				rows.Close()
				return err
			}
			g.Showtimes[sid] = id
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		const owned = "showtime_id IN (SELECT id FROM showtimes WHERE movie_id = ?)"
		if err := loadBookingRefs(ctx, tx, g, owned, id); err != nil {
			return err
		}
		if err := loadTicketRefs(ctx, tx, g, owned+" OR movie_id = ?", id, id); err != nil {
			return err
		}

		p, err := cascade.MovieDelete(g, id)
		if errors.Is(err, cascade.ErrRestricted) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		plan = p
		return applyPlan(ctx, tx, p)
	})
	if err != nil {
		return cascade.Plan{}, err
	}
	return plan, nil
}
