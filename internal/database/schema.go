package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Foreign keys carry no ON DELETE action: every cascade is performed
// explicitly by the repositories, so a missed cascade fails loudly instead
// of silently removing rows.  users.email is indexed but not unique; only
// registration refuses duplicates.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(100)    NOT NULL,
		email         VARCHAR(255)    NOT NULL,
		password_hash CHAR(64)        NOT NULL,
		role          VARCHAR(20)     NOT NULL DEFAULT 'Customer',
		is_system     TINYINT(1)      NOT NULL DEFAULT 0,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(255)    NOT NULL,
		description  TEXT            NULL,
		duration_min INT UNSIGNED    NOT NULL DEFAULT 0,
		price_cents  INT UNSIGNED    NOT NULL DEFAULT 0,
		image_path   VARCHAR(255)    NULL,
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id   BIGINT UNSIGNED NOT NULL,
		movie_date DATE            NOT NULL,
		movie_time TIME            NOT NULL,
		CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		showtime_id  BIGINT UNSIGNED NOT NULL,
		booking_date DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id       BIGINT UNSIGNED NOT NULL,
		movie_id      BIGINT UNSIGNED NOT NULL,
		showtime_id   BIGINT UNSIGNED NOT NULL,
		ticket_number VARCHAR(32)     NOT NULL,
		issued_at     DATETIME        NOT NULL,
		UNIQUE KEY uq_tickets_number (ticket_number),
		CONSTRAINT fk_tickets_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_tickets_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_tickets_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
