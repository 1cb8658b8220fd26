package schedule

import (
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrInvalidPeriod marks period windows that violate the construction
// rules below.
var ErrInvalidPeriod = crerr.New("invalid schedule period")

// MaxPeriodDays is the longest inclusive span a Period may cover. The
// upstream schedule endpoint returns one week of games per request, so
// a single lookup can never need more than this.
const MaxPeriodDays = 7

const dateKeyLayout = "2006-01-02"

// Period is a closed date window [Start, End] spanning at most
// MaxPeriodDays calendar days. The zero value is not valid; use
// NewPeriod.
type Period struct {
	start time.Time
	end   time.Time
}

// NewPeriod validates and builds a window. Start must not be after end
// and the inclusive span must not exceed MaxPeriodDays days. Times are
// truncated to their calendar date in UTC.
func NewPeriod(start, end time.Time) (Period, error) {
	start = dateOnly(start)
	end = dateOnly(end)

	if end.Before(start) {
		return Period{}, crerr.Mark(
			crerr.Newf("period start %s is after end %s", start.Format(dateKeyLayout), end.Format(dateKeyLayout)),
			ErrInvalidPeriod,
		)
	}

	days := inclusiveDays(start, end)
	if days > MaxPeriodDays {
		return Period{}, crerr.Mark(
			crerr.Newf("period spans %d days, maximum is %d", days, MaxPeriodDays),
			ErrInvalidPeriod,
		)
	}

	return Period{start: start, end: end}, nil
}

func (p Period) Start() time.Time { return p.start }

func (p Period) End() time.Time { return p.end }

// StartKey renders the window start as the YYYY-MM-DD path segment the
// schedule endpoint expects.
func (p Period) StartKey() string {
	return p.start.Format(dateKeyLayout)
}

// Contains reports whether t's calendar date falls inside the window,
// boundaries included.
func (p Period) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(p.start) && !d.After(p.end)
}

// ContainsKey is Contains for an already formatted YYYY-MM-DD date.
// Malformed keys are outside every window.
func (p Period) ContainsKey(key string) bool {
	d, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return false
	}
	return p.Contains(d)
}

// Days returns the inclusive day count of the window.
func (p Period) Days() int {
	return inclusiveDays(p.start, p.end)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start)/(24*time.Hour)) + 1
}
