package utils

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/b-cinema/internal/model"
)

// NewTicketNumber returns "TKT-" followed by the first eight characters of
// a fresh random UUID in upper case, e.g. TKT-3F2A9C1B.
func NewTicketNumber() string {
	return model.TicketPrefix + strings.ToUpper(uuid.NewString()[:8])
}

// NormalizeTicketNumber trims and upper-cases a caller supplied number.
func NormalizeTicketNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
