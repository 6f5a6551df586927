package handler

import (
    "fmt"
    "math"
    "strconv"
    "strings"
    "time"

    "github.com/iliyamo/b-cinema/internal/model"
    "github.com/iliyamo/b-cinema/internal/service"
)

// ----- responses -----

type userResp struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Role      string    `json:"role"`
    CreatedAt time.Time `json:"createdAt"`
}

func toUser(u model.User) userResp {
    return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

type movieResp struct {
    ID          uint64  `json:"id"`
    Title       string  `json:"title"`
    Description string  `json:"description"`
    Duration    uint32  `json:"duration"`
    Price       string  `json:"price"`
    PriceCents  uint32  `json:"priceCents"`
    ImagePath   *string `json:"imagePath"`
}

func toMovie(m model.Movie) movieResp {
    return movieResp{
        ID:          m.ID,
        Title:       m.Title,
        Description: m.Description,
        Duration:    m.DurationMin,
        Price:       formatCents(m.PriceCents),
        PriceCents:  m.PriceCents,
        ImagePath:   m.ImagePath,
    }
}

type showtimeResp struct {
    ID         uint64 `json:"id"`
    MovieID    uint64 `json:"movieId"`
    MovieTitle string `json:"movieTitle,omitempty"`
    Date       string `json:"date"`
    Time       string `json:"time"`
}

func toShowtime(s model.Showtime) showtimeResp {
    return showtimeResp{ID: s.ID, MovieID: s.MovieID, Date: s.Date.Format(model.DateLayout), Time: s.Time}
}

type showtimeGroupResp struct {
    MovieID    uint64         `json:"movieId"`
    MovieTitle string         `json:"movieTitle"`
    Showtimes  []showtimeResp `json:"showtimes"`
}

type ticketResp struct {
    ID           uint64    `json:"id"`
    TicketNumber string    `json:"ticketNumber"`
    UserID       uint64    `json:"userId"`
    UserName     string    `json:"userName"`
    UserEmail    string    `json:"userEmail"`
    MovieID      uint64    `json:"movieId"`
    MovieTitle   string    `json:"movieTitle"`
    ShowtimeID   uint64    `json:"showtimeId"`
    ShowtimeDate string    `json:"showtimeDate"`
    ShowtimeTime string    `json:"showtimeTime"`
    IssuedAt     time.Time `json:"issuedAt"`
}

func toTicket(v model.TicketView) ticketResp {
    return ticketResp{
        ID:           v.ID,
        TicketNumber: v.TicketNumber,
        UserID:       v.UserID,
        UserName:     v.UserName,
        UserEmail:    v.UserEmail,
        MovieID:      v.MovieID,
        MovieTitle:   v.MovieTitle,
        ShowtimeID:   v.ShowtimeID,
        ShowtimeDate: v.ShowtimeDate.Format(model.DateLayout),
        ShowtimeTime: v.ShowtimeTime,
        IssuedAt:     v.IssuedAt,
    }
}

// ----- requests -----

type registerReq struct {
    Name     string `json:"name" form:"name"`
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}

type loginReq struct {
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}

type userReq struct {
    Name     string `json:"name" form:"name"`
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
    Role     string `json:"role" form:"role"`
}

type movieReq struct {
    Title       string `json:"title" form:"title"`
    Description string `json:"description" form:"description"`
    Duration    int64  `json:"duration" form:"duration"`
    Price       string `json:"price" form:"price"` // decimal, e.g. "12.50"
}

type showtimeReq struct {
    MovieID uint64 `json:"movieId" form:"movieId"`
    Date    string `json:"date" form:"date"`
    Time    string `json:"time" form:"time"`
}

type ticketReq struct {
    UserID       uint64 `json:"userId" form:"userId"`
    MovieID      uint64 `json:"movieId" form:"movieId"`
    ShowtimeID   uint64 `json:"showtimeId" form:"showtimeId"`
    TicketNumber string `json:"ticketNumber" form:"ticketNumber"`
}

// parseCents converts a decimal amount with at most two fraction digits
// into cents.  An empty string is zero.
func parseCents(s string) (int64, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return 0, nil
    }
    whole, frac, _ := strings.Cut(s, ".")
    if !digits(whole) || len(frac) > 2 || (frac != "" && !digits(frac)) {
        return 0, service.FieldError("price", "must be an amount with at most two decimals")
    }
    frac += strings.Repeat("0", 2-len(frac))
    w, err := strconv.ParseInt(whole, 10, 64)
    if err != nil || w > math.MaxUint32/100 {
        return 0, service.FieldError("price", "is too large")
    }
    f, _ := strconv.ParseInt(frac, 10, 64)
    return w*100 + f, nil
}

func digits(s string) bool {
    if s == "" {
        return false
    }
    for _, r := range s {
        if r < '0' || r > '9' {
            return false
        }
    }
    return true
}

func formatCents(c uint32) string {
    return fmt.Sprintf("%d.%02d", c/100, c%100)
}
