package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options carries the connection settings read from config.
type Options struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// Open connects to MySQL and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = o.Host + ":" + o.Port
	cfg.DBName = o.Name
	// DATETIME/DATE -> time.Time, all times kept in UTC
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
