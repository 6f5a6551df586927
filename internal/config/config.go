package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env  string // application environment (e.g. "dev", "prod")
    Port string // HTTP port to listen on

    // Database.  When DBHost is empty the server runs on the in-memory store.
    DBUser string
    DBPass string
    DBHost string
    DBPort string
    DBName string

    SessionSecret string        // signs session tokens
    SessionIdle   time.Duration // idle timeout of a session
    SessionMaxAge time.Duration // absolute lifetime of a session token
    SessionCookie string        // cookie carrying the session token
    CookieSecure  bool
    HashAlgorithm string // sha256 | blake2b

    UploadDir       string // where posters are written
    UploadURLPrefix string // public path prefix of posters

    // System account seeded at start-up.
    AdminName     string
    AdminEmail    string
    AdminPassword string

    AMQPURL   string // empty disables ticket events
    LogLevel  string
    LogFormat string
}

// Load reads a .env file when present, then the environment.  Required
// variables are enforced by must() and missing values stop the process.
func Load() Config {
    _ = godotenv.Load()

    cfg := Config{
        Env:  must("APP_ENV"),
        Port: must("APP_PORT"),

        DBUser: os.Getenv("DB_USER"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: os.Getenv("DB_HOST"),
        DBPort: envStr("DB_PORT", "3306"),
        DBName: os.Getenv("DB_NAME"),

        SessionSecret: must("SESSION_SECRET"),
        SessionIdle:   time.Duration(envInt("SESSION_IDLE_MIN", 30)) * time.Minute,
        SessionMaxAge: time.Duration(envInt("SESSION_MAX_HOURS", 12)) * time.Hour,
        SessionCookie: envStr("SESSION_COOKIE", "bcinema_session"),
        CookieSecure:  envBool("COOKIE_SECURE", false),
        HashAlgorithm: envStr("HASH_ALGORITHM", "sha256"),

        UploadDir:       envStr("UPLOAD_DIR", "wwwroot/movie-posters"),
        UploadURLPrefix: envStr("UPLOAD_URL_PREFIX", "/movie-posters"),

        AdminName:     envStr("ADMIN_NAME", "Administrator"),
        AdminEmail:    envStr("ADMIN_EMAIL", "admin@bcinema.local"),
        AdminPassword: os.Getenv("ADMIN_PASSWORD"),

        AMQPURL:   firstEnv("AMQP_URL", "RABBITMQ_URL"),
        LogLevel:  envStr("LOG_LEVEL", "INFO"),
        LogFormat: envStr("LOG_FORMAT", "text"),
    }
    if cfg.DBHost != "" {
        cfg.DBUser = must("DB_USER")
        cfg.DBName = must("DB_NAME")
    }
    return cfg
}

// UseMySQL reports whether a database is configured.
func (c Config) UseMySQL() bool { return c.DBHost != "" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func firstEnv(keys ...string) string {
    for _, k := range keys {
        if v := os.Getenv(k); v != "" {
            return v
        }
    }
    return ""
}
