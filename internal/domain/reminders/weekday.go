package reminders

import (
	"fmt"
	"strings"
	"time"
)

var weekdayTags = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdaySet is a bitmask of weekdays, bit n set for time.Weekday(n).
type WeekdaySet uint8

const AllWeekdays WeekdaySet = 1<<7 - 1

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		set = set.With(day)
	}
	return set
}

// ParseWeekdays accepts tags like "Mon"; case and surrounding space are ignored.
func ParseWeekdays(tags []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		day, ok := weekdayByTag(tag)
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", tag)
		}
		set = set.With(day)
	}
	return set, nil
}

// ParseWeekdaysCSV reads the comma-separated storage form, e.g. "Mon,Wed,Fri".
func ParseWeekdaysCSV(value string) (WeekdaySet, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return ParseWeekdays(strings.Split(value, ","))
}

func weekdayByTag(tag string) (time.Weekday, bool) {
	for i, known := range weekdayTags {
		if strings.EqualFold(known, tag) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func (s WeekdaySet) With(day time.Weekday) WeekdaySet {
	return s | 1<<uint(day)
}

func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s&AllWeekdays == 0
}

func (s WeekdaySet) IsFull() bool {
	return s&AllWeekdays == AllWeekdays
}

// Tags lists the days Sunday first.
func (s WeekdaySet) Tags() []string {
	tags := make([]string, 0, 7)
	for i, tag := range weekdayTags {
		if s.Contains(time.Weekday(i)) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// String is the storage form.
func (s WeekdaySet) String() string {
	return strings.Join(s.Tags(), ",")
}
