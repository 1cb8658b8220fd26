package schedule

import (
	"strconv"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// GameID identifies a single game upstream.
type GameID int64

func (id GameID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Game is one schedule entry. StartTimeUTC may be zero when the
// upstream timestamp could not be parsed; VenueUTCOffset keeps the raw
// "+hh:mm" / "-hh:mm" string.
type Game struct {
	ID             GameID
	Season         int64
	StartTimeUTC   time.Time
	VenueUTCOffset string
}

// LocalDate shifts the UTC start time by the venue offset and returns
// the resulting calendar date. Late evening starts in western venues
// land on the previous local day, which is the date the export layout
// keys on.
func (g Game) LocalDate() (time.Time, error) {
	if g.StartTimeUTC.IsZero() {
		return time.Time{}, crerr.Newf("game %d has no start time", g.ID)
	}
	offset, err := parseVenueOffset(g.VenueUTCOffset)
	if err != nil {
		return time.Time{}, crerr.Wrapf(err, "game %d", g.ID)
	}
	return dateOnly(g.StartTimeUTC.Add(offset)), nil
}

// parseVenueOffset understands the signed "+hh:mm" / "-hh:mm" strings
// the schedule feed carries. The sign applies to the whole offset, so
// "-03:30" means three and a half hours behind UTC.
func parseVenueOffset(s string) (time.Duration, error) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, crerr.Newf("malformed venue offset %q", s)
	}

	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, crerr.Newf("malformed venue offset %q", s)
	}
	minutes, err := strconv.Atoi(s[4:6])
	if err != nil || minutes > 59 {
		return 0, crerr.Newf("malformed venue offset %q", s)
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if s[0] == '-' {
		d = -d
	}
	return d, nil
}
