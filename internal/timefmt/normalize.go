// Package timefmt canonicalizes the date and time strings that arrive from
// booking forms. Every caller in the scheduling core goes through these
// functions; no ad hoc parsing happens at call sites.
package timefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Canonical formats. Dates are YYYY-MM-DD, times are 24-hour HH:MM.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// TimeFormatError reports a time string that matches no accepted pattern.
type TimeFormatError struct {
	Raw string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time format: %q", e.Raw)
}

// DateFormatError reports a date string that matches no accepted pattern or
// names an impossible calendar date.
type DateFormatError struct {
	Raw string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date format: %q", e.Raw)
}

var (
	time24Re   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	time12Re   = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)
	dateISORe  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dateDMYRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// NormalizeTime converts a raw time string into canonical 24-hour HH:MM.
// Accepted inputs: "H:MM"/"HH:MM" (24-hour) and "H:MM AM"/"HH:MM pm"
// (12-hour, meridiem case-insensitive). 12 AM maps to 00, 12 PM stays 12.
func NormalizeTime(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if m := time12Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return "", &TimeFormatError{Raw: raw}
		}
		meridiem := strings.ToUpper(m[3])
		if meridiem == "AM" && hour == 12 {
			hour = 0
		}
		if meridiem == "PM" && hour != 12 {
			hour += 12
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	if m := time24Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return "", &TimeFormatError{Raw: raw}
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	return "", &TimeFormatError{Raw: raw}
}

// NormalizeDate converts a raw date string into canonical YYYY-MM-DD.
// Accepted inputs: "YYYY-MM-DD" and "DD/MM/YYYY", both validated against the
// real calendar so "2025-13-01" fails rather than rolling over.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	var year, month, day int
	switch {
	case dateISORe.MatchString(s):
		m := dateISORe.FindStringSubmatch(s)
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	case dateDMYRe.MatchString(s):
		m := dateDMYRe.FindStringSubmatch(s)
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	default:
		return "", &DateFormatError{Raw: raw}
	}

	canonical := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := time.Parse(DateLayout, canonical); err != nil {
		return "", &DateFormatError{Raw: raw}
	}
	return canonical, nil
}

// Combine builds the wall-clock instant for a canonical date and time pair.
// The scheduling core is single-region; instants are UTC.
func Combine(date, timeOfDay string) (time.Time, error) {
	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine %q %q: %w", date, timeOfDay, err)
	}
	return t, nil
}

// BeforeDay reports whether the canonical date falls strictly before the day
// containing ref. Time of day is ignored on both sides.
func BeforeDay(date string, ref time.Time) (bool, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false, &DateFormatError{Raw: date}
	}
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(refDay), nil
}
