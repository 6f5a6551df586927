package model

import "time"

// Movie is a film offered by the cinema.  A movie owns its showtimes;
// deleting a movie removes every showtime scheduled for it.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – required title.
//  Description – free text, may be empty.
//  DurationMin – running time in minutes.
//  PriceCents  – ticket price in cents.
//  ImagePath   – public path of the poster (nil when no poster was uploaded).
//  CreatedAt   – creation timestamp.
type Movie struct {
    ID          uint64    // movies.id
    Title       string    // movies.title
    Description string    // movies.description
    DurationMin uint32    // movies.duration_min
    PriceCents  uint32    // movies.price_cents
    ImagePath   *string   // movies.image_path (nullable)
    CreatedAt   time.Time // movies.created_at
}
