package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/repository"
)

// MovieRepo stores movies.
type MovieRepo struct{ s *Store }

func (r *MovieRepo) Create(_ context.Context, m *model.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.allocate("movies")
	m.CreatedAt = time.Now().UTC()
	r.s.movies[m.ID] = *m
	return nil
}

func (r *MovieRepo) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MovieRepo) List(_ context.Context) ([]model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MovieRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.movies)), nil
}

func (r *MovieRepo) Update(_ context.Context, m *model.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.movies[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.CreatedAt = cur.CreatedAt
	r.s.movies[m.ID] = *m
	return nil
}

func (r *MovieRepo) Delete(_ context.Context, id uint64) (cascade.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[id]; !ok {
		return cascade.Plan{}, repository.ErrNotFound
	}
	p, err := cascade.MovieDelete(r.s.graph(), id)
	if errors.Is(err, cascade.ErrRestricted) {
		return cascade.Plan{}, repository.ErrConflict
	}
	if err != nil {
		return cascade.Plan{}, err
	}
	r.s.apply(p)
	return p, nil
}

// ShowtimeRepo stores showtimes.
type ShowtimeRepo struct{ s *Store }

func (r *ShowtimeRepo) Create(_ context.Context, st *model.Showtime) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[st.MovieID]; !ok {
		return repository.ErrNotFound
	}
	st.ID = r.s.allocate("showtimes")
	r.s.showtimes[st.ID] = *st
	return nil
}

func (r *ShowtimeRepo) GetByID(_ context.Context, id uint64) (*model.Showtime, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.showtimes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r *ShowtimeRepo) ListViews(_ context.Context) ([]model.ShowtimeView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.ShowtimeView, 0, len(r.s.showtimes))
	for _, st := range r.s.showtimes {
		out = append(out, model.ShowtimeView{Showtime: st, MovieTitle: r.s.movies[st.MovieID].Title})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MovieTitle != b.MovieTitle {
			return a.MovieTitle < b.MovieTitle
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *ShowtimeRepo) Update(_ context.Context, st *model.Showtime) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.showtimes[st.ID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.movies[st.MovieID]; !ok {
		return repository.ErrNotFound
	}
	r.s.showtimes[st.ID] = *st
	return nil
}

func (r *ShowtimeRepo) Delete(_ context.Context, id uint64) (cascade.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.showtimes[id]; !ok {
		return cascade.Plan{}, repository.ErrNotFound
	}
	p := cascade.ShowtimeDelete(r.s.graph(), id)
	r.s.apply(p)
	return p, nil
}
