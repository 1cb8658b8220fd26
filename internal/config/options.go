package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateRangeSeparator splits the two dates of a -dates argument.
const DateRangeSeparator = "::"

const runDateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// RunOptions is the validated invocation: either a single game or an
// inclusive date range, plus the output root. Exactly one mode is set.
type RunOptions struct {
	GameID     int64  `validate:"omitempty,gt=0"`
	OutputRoot string `validate:"required"`
	Start      time.Time
	End        time.Time
}

// SingleGame reports whether the invocation targets one game rather
// than a date range.
func (o RunOptions) SingleGame() bool {
	return o.GameID != 0
}

// ParseRunOptions validates the raw CLI inputs. All input errors are
// caught here, before anything touches the network.
func ParseRunOptions(gameID int64, dates, outputRoot string) (RunOptions, error) {
	opts := RunOptions{
		GameID:     gameID,
		OutputRoot: strings.TrimSpace(outputRoot),
	}
	if err := validate.Struct(opts); err != nil {
		return RunOptions{}, fmt.Errorf("validate run options: %w", err)
	}

	dates = strings.TrimSpace(dates)
	hasGame := gameID != 0
	hasRange := dates != ""
	if hasGame == hasRange {
		return RunOptions{}, fmt.Errorf("exactly one of -game or -dates must be provided")
	}
	if !hasRange {
		return opts, nil
	}

	parts := strings.SplitN(dates, DateRangeSeparator, 2)
	if len(parts) != 2 {
		return RunOptions{}, fmt.Errorf("invalid date range %q, expected start%send", dates, DateRangeSeparator)
	}
	start, err := time.Parse(runDateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return RunOptions{}, fmt.Errorf("parse range start: %w", err)
	}
	end, err := time.Parse(runDateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return RunOptions{}, fmt.Errorf("parse range end: %w", err)
	}
	if end.Before(start) {
		return RunOptions{}, fmt.Errorf("range start %s is after end %s", parts[0], parts[1])
	}

	opts.Start = start.UTC()
	opts.End = end.UTC()
	return opts, nil
}
