package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pet-diary/pkg/clock"
)

func ParseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return clock.ParseDate(value)
}

func ParseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := clock.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func ParseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

func FormatDate(date *time.Time) *string {
	if date == nil {
		return nil
	}
	formatted := clock.FormatDate(*date)
	return &formatted
}
