package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors
var (
	ErrInvalidPartyName = errors.New("invalid party name")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("start date is after end date")
)

// Validation constants
const (
	MaxPartyNameLength = 255
	MinPartyNameLength = 1
)

// DateLayout is the ISO-8601 calendar date layout used by source documents.
const DateLayout = "2006-01-02"

// localDateTimeLayouts are ISO-8601 date-times without a zone offset. They
// are read as UTC.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ValidatePartyName validates a party display name.
func ValidatePartyName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinPartyNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidPartyName)
	}

	if len(name) > MaxPartyNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidPartyName, MaxPartyNameLength)
	}

	return nil
}

// ParseDate parses an ISO-8601 date, an RFC 3339 timestamp or a local
// date-time and truncates it to the calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return TruncateDay(t), nil
	}

	for _, layout := range localDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// TruncateDay drops the clock part of t, keeping its calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDateRange checks that start is not after end when both are set.
func ValidateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && TruncateDay(*start).After(TruncateDay(*end)) {
		return ErrInvalidDateRange
	}
	return nil
}

// ClampPagination applies the page size bounds to limit and offset.
func ClampPagination(limit, offset, defaultSize, maxSize int) (int, int) {
	if limit <= 0 {
		limit = defaultSize
	}
	if limit > maxSize {
		limit = maxSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
