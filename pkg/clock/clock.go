// Package clock provides the calendar "today" used by the diary, resolved in a
// configured timezone on top of an injectable clockwork clock.
package clock

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const DateLayout = "2006-01-02"

type Clock struct {
	base clockwork.Clock
	loc  *time.Location
}

func New(base clockwork.Clock, loc *time.Location) *Clock {
	if base == nil {
		base = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{base: base, loc: loc}
}

// NewInZone builds a real clock for the named IANA zone.
func NewInZone(name string) (*Clock, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(nil, time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return New(nil, loc), nil
}

func (c *Clock) Now() time.Time {
	return c.base.Now().In(c.loc)
}

// Today is the caller's local calendar date, as midnight UTC.
func (c *Clock) Today() time.Time {
	return DateOf(c.Now())
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Base() clockwork.Clock {
	return c.base
}

// DateOf strips the time of day, keeping the wall-clock date of t.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func AddDays(date time.Time, days int) time.Time {
	return DateOf(date).AddDate(0, 0, days)
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}
