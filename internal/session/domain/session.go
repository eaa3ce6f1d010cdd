package domain

import (
	"time"

	"github.com/mileusna/useragent"
)

// Session represents an authenticated login. The token is an opaque random
// value; it carries no claims and is only meaningful against the session store.
type Session struct {
	ID        string
	UserID    string
	Token     string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Info is the listing view of a session: no token, plus a parsed client
// summary and whether this row is the session making the request.
type Info struct {
	ID        string
	Client    string
	IsCurrent bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ClientSummary renders the raw User-Agent header into a short
// "Browser on OS" label for session listings. Unparseable agents fall
// back to the raw string, empty agents to "Unknown".
func ClientSummary(rawUA string) string {
	if rawUA == "" {
		return "Unknown"
	}
	ua := useragent.Parse(rawUA)
	switch {
	case ua.Name != "" && ua.OS != "":
		return ua.Name + " on " + ua.OS
	case ua.Name != "":
		return ua.Name
	default:
		return rawUA
	}
}
