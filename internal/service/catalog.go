package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/logger"
	"github.com/iliyamo/b-cinema/internal/metrics"
	"github.com/iliyamo/b-cinema/internal/model"
)

// Catalog manages movies and their showtimes.
type Catalog struct {
	Movies    MovieStore
	Showtimes ShowtimeStore
	Assets    AssetStore
	// Cache is optional.
	Cache Invalidator
}

// MovieInput is the movie create/edit form.
type MovieInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	DurationMin int64  `json:"duration" validate:"gte=0,lte=100000"`
	PriceCents  int64  `json:"price" validate:"gte=0"`
}

// Upload is an optional poster attached to a movie form.
type Upload struct {
	Body io.Reader
	Ext  string
}

// ShowtimeInput is the showtime create/edit form.
type ShowtimeInput struct {
	MovieID uint64 `json:"movieId" validate:"required"`
	Date    string `json:"date" validate:"required"`
	Time    string `json:"time" validate:"required"`
}

// ListMovies returns every movie to any signed-in caller.
func (s *Catalog) ListMovies(ctx context.Context, p auth.Principal) ([]model.Movie, error) {
	if err := auth.RequireLogin(p); err != nil {
		return nil, err
	}
	return s.Movies.List(ctx)
}

// GetMovie returns one movie to any signed-in caller.
func (s *Catalog) GetMovie(ctx context.Context, p auth.Principal, id uint64) (*model.Movie, error) {
	if err := auth.RequireLogin(p); err != nil {
		return nil, err
	}
	return s.Movies.GetByID(ctx, id)
}

func (in *MovieInput) validate() *ValidationError {
	in.Title = strings.TrimSpace(in.Title)
	ve := check(*in)
	if in.PriceCents > math.MaxUint32 {
		ve.add("price", "is too large")
	}
	return ve
}

// storePoster saves up when it carries data and returns the new path, or
// "" when there was nothing to store.
func (s *Catalog) storePoster(ctx context.Context, up *Upload) (string, error) {
	if up == nil || up.Body == nil {
		return "", nil
	}
	path, err := s.Assets.Save(ctx, up.Body, up.Ext)
	if err != nil {
		logger.WithContext(ctx).Error("poster upload failed", "error", err)
		return "", FieldError("image", "could not be stored")
	}
	return path, nil
}

// dropPoster removes a poster stored for a write that then failed.
func (s *Catalog) dropPoster(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.Assets.Remove(context.WithoutCancel(ctx), path); err != nil {
		logger.WithContext(ctx).Warn("orphaned poster not removed", "path", path, "error", err)
	}
}

// CreateMovie adds a movie, storing the poster when one is uploaded.
func (s *Catalog) CreateMovie(ctx context.Context, p auth.Principal, in MovieInput, up *Upload) (*model.Movie, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := in.validate().orNil(); err != nil {
		return nil, err
	}
	path, err := s.storePoster(ctx, up)
	if err != nil {
		return nil, err
	}
	m := &model.Movie{
		Title:       in.Title,
		Description: in.Description,
		DurationMin: uint32(in.DurationMin),
		PriceCents:  uint32(in.PriceCents),
	}
	if path != "" {
		m.ImagePath = &path
	}
	if err := s.Movies.Create(ctx, m); err != nil {
		s.dropPoster(ctx, path)
		return nil, fmt.Errorf("create movie: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

// EditMovie overwrites the movie's fields.  The poster changes only when a
// non-empty upload is given.
func (s *Catalog) EditMovie(ctx context.Context, p auth.Principal, id uint64, in MovieInput, up *Upload) (*model.Movie, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	m, err := s.Movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate().orNil(); err != nil {
		return nil, err
	}
	path, err := s.storePoster(ctx, up)
	if err != nil {
		return nil, err
	}
	m.Title = in.Title
	m.Description = in.Description
	m.DurationMin = uint32(in.DurationMin)
	m.PriceCents = uint32(in.PriceCents)
	if path != "" {
		m.ImagePath = &path
	}
	if err := s.Movies.Update(ctx, m); err != nil {
		s.dropPoster(ctx, path)
		return nil, fmt.Errorf("update movie: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

// DeleteMovie removes a movie with its showtimes and their bookings and
// tickets.  It fails with ErrConflict when a surviving ticket still names
// the movie.
func (s *Catalog) DeleteMovie(ctx context.Context, p auth.Principal, id uint64) (cascade.Plan, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return cascade.Plan{}, err
	}
	plan, err := s.Movies.Delete(ctx, id)
	if err != nil {
		return cascade.Plan{}, fmt.Errorf("delete movie %d: %w", id, err)
	}
	recordPlan(plan)
	s.invalidate(ctx)
	return plan, nil
}

// ListShowtimes returns the showtimes grouped per movie.
func (s *Catalog) ListShowtimes(ctx context.Context, p auth.Principal) ([]model.MovieShowtimes, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	views, err := s.Showtimes.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	return GroupShowtimes(views), nil
}

// GroupShowtimes orders views by movie title, movie, date, time and id and
// folds consecutive rows of one movie into a group.
func GroupShowtimes(views []model.ShowtimeView) []model.MovieShowtimes {
	sorted := append([]model.ShowtimeView(nil), views...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.MovieTitle != b.MovieTitle:
			return a.MovieTitle < b.MovieTitle
		case a.MovieID != b.MovieID:
			return a.MovieID < b.MovieID
		case !a.Date.Equal(b.Date):
			return a.Date.Before(b.Date)
		case a.Time != b.Time:
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})

	var out []model.MovieShowtimes
	for _, v := range sorted {
		if n := len(out); n == 0 || out[n-1].MovieID != v.MovieID {
			out = append(out, model.MovieShowtimes{MovieID: v.MovieID, MovieTitle: v.MovieTitle})
		}
		last := &out[len(out)-1]
		last.Showtimes = append(last.Showtimes, v.Showtime)
	}
	return out
}

// GetShowtime returns one showtime.
func (s *Catalog) GetShowtime(ctx context.Context, p auth.Principal, id uint64) (*model.Showtime, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.Showtimes.GetByID(ctx, id)
}

// showtimeFrom validates in and converts it to a showtime row.
func (s *Catalog) showtimeFrom(ctx context.Context, in ShowtimeInput) (model.Showtime, error) {
	ve := check(in)
	var st model.Showtime
	if in.Date != "" {
		d, ok := parseDate(in.Date)
		if !ok {
			ve.add("date", "must be a date in YYYY-MM-DD form")
		}
		st.Date = d
	}
	if in.Time != "" {
		clock, ok := parseClock(in.Time)
		if !ok {
			ve.add("time", "must be a time in HH:MM or HH:MM:SS form")
		}
		st.Time = clock
	}
	if in.MovieID != 0 {
		if _, err := s.Movies.GetByID(ctx, in.MovieID); errors.Is(err, ErrNotFound) {
			ve.add("movieId", "movie does not exist")
		} else if err != nil {
			return st, err
		}
	}
	st.MovieID = in.MovieID
	return st, ve.orNil()
}

// CreateShowtime schedules a movie.
func (s *Catalog) CreateShowtime(ctx context.Context, p auth.Principal, in ShowtimeInput) (*model.Showtime, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	st, err := s.showtimeFrom(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.Showtimes.Create(ctx, &st); err != nil {
		return nil, fmt.Errorf("create showtime: %w", err)
	}
	s.invalidate(ctx)
	return &st, nil
}

// EditShowtime moves a showtime, possibly to another movie.
func (s *Catalog) EditShowtime(ctx context.Context, p auth.Principal, id uint64, in ShowtimeInput) (*model.Showtime, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	if _, err := s.Showtimes.GetByID(ctx, id); err != nil {
		return nil, err
	}
	st, err := s.showtimeFrom(ctx, in)
	if err != nil {
		return nil, err
	}
	st.ID = id
	if err := s.Showtimes.Update(ctx, &st); err != nil {
		return nil, fmt.Errorf("update showtime: %w", err)
	}
	s.invalidate(ctx)
	return &st, nil
}

// DeleteShowtime removes a showtime with its bookings and tickets.
func (s *Catalog) DeleteShowtime(ctx context.Context, p auth.Principal, id uint64) (cascade.Plan, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return cascade.Plan{}, err
	}
	plan, err := s.Showtimes.Delete(ctx, id)
	if err != nil {
		return cascade.Plan{}, fmt.Errorf("delete showtime %d: %w", id, err)
	}
	recordPlan(plan)
	s.invalidate(ctx)
	return plan, nil
}

func (s *Catalog) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		logger.WithContext(ctx).Warn("listing cache invalidation failed", "error", err)
	}
}

func recordPlan(p cascade.Plan) {
	for entity, ids := range map[string][]uint64{
		"movies":    p.Movies,
		"showtimes": p.Showtimes,
		"bookings":  p.Bookings,
		"tickets":   p.Tickets,
		"users":     p.Users,
	} {
		if len(ids) > 0 {
			metrics.CascadeDeleted.WithLabelValues(entity).Add(float64(len(ids)))
		}
	}
}
