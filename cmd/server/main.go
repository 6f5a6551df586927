package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/config"
	"github.com/iliyamo/b-cinema/internal/database"
	"github.com/iliyamo/b-cinema/internal/handler"
	"github.com/iliyamo/b-cinema/internal/logger"
	"github.com/iliyamo/b-cinema/internal/middleware"
	"github.com/iliyamo/b-cinema/internal/queue"
	"github.com/iliyamo/b-cinema/internal/repository"
	"github.com/iliyamo/b-cinema/internal/repository/memory"
	"github.com/iliyamo/b-cinema/internal/router"
	"github.com/iliyamo/b-cinema/internal/service"
	"github.com/iliyamo/b-cinema/internal/storage"
	"github.com/iliyamo/b-cinema/internal/utils"
)

// stores groups the persistence contracts the services depend on.
type stores struct {
	users     service.UserStore
	movies    service.MovieStore
	showtimes service.ShowtimeStore
	bookings  service.BookingStore
	tickets   service.TicketStore
}

func mysqlStores(db *sql.DB) stores {
	return stores{
		users:     repository.NewUserRepo(db),
		movies:    repository.NewMovieRepo(db),
		showtimes: repository.NewShowtimeRepo(db),
		bookings:  repository.NewBookingRepo(db),
		tickets:   repository.NewTicketRepo(db),
	}
}

func memoryStores() stores {
	m := memory.New()
	return stores{users: m.Users(), movies: m.Movies(), showtimes: m.Showtimes(), bookings: m.Bookings(), tickets: m.Tickets()}
}

func main() {
	cfg := config.Load() // Load environment config
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	hasher, err := utils.NewPasswordHasher(cfg.HashAlgorithm)
	if err != nil {
		logger.Fatal("password hasher", "error", err)
	}

	var st stores
	if cfg.UseMySQL() {
		db, err := database.Open(database.Options{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			logger.Fatal("mysql connect failed", "error", err)
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatal("schema migration failed", "error", err)
		}
		st = mysqlStores(db)
		log.Info("using mysql store", "host", cfg.DBHost, "db", cfg.DBName)
	} else {
		st = memoryStores()
		log.Warn("DB_HOST not set, using in-memory store; data is lost on restart")
	}

	rdb := config.NewRedisClient()
	var sessions auth.SessionStore
	if rdb != nil {
		defer rdb.Close()
		sessions = auth.NewRedisSessionStore(rdb, cfg.SessionIdle, "session")
		log.Info("redis connected; sessions, login rate limit and listing cache enabled")
	} else {
		sessions = auth.NewMemorySessionStore(cfg.SessionIdle)
		log.Warn("redis unavailable; in-process sessions, no rate limit or listing cache")
	}
	cache := middleware.NewListingCache(config.LoadCacheConfig(), rdb)

	identity := &service.Identity{
		Users:    st.users,
		Sessions: sessions,
		Hasher:   hasher,
		Secret:   cfg.SessionSecret,
		TokenTTL: cfg.SessionMaxAge,
	}
	catalog := &service.Catalog{
		Movies:    st.movies,
		Showtimes: st.showtimes,
		Assets:    storage.NewLocalAssets(cfg.UploadDir, cfg.UploadURLPrefix),
		Cache:     cache,
	}
	reservations := &service.Reservations{
		Users:     st.users,
		Movies:    st.movies,
		Showtimes: st.showtimes,
		Bookings:  st.bookings,
		Tickets:   st.tickets,
	}
	if cfg.AMQPURL != "" {
		reservations.Events = queue.NewPublisher(cfg.AMQPURL)
		log.Info("ticket events enabled", "queue", queue.TicketQueueName)
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		admin, err := identity.EnsureSystemAccount(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		switch {
		case err != nil:
			logger.Fatal("system account", "error", err)
		case admin == nil:
			log.Warn("ADMIN_PASSWORD not set; no system administrator provisioned")
		default:
			log.Info("system administrator ready", "email", admin.Email)
		}
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	h := handler.New(identity, catalog, reservations, handler.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.CookieSecure})
	router.RegisterRoutes(e, h, router.Deps{
		Identity:     identity,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        cache,
		UploadDir:    cfg.UploadDir,
		PosterPrefix: cfg.UploadURLPrefix,
	})

	addr := ":" + cfg.Port
	log.Info("listening", "addr", addr, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "error", err)
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
