// Package datetext resolves free-form date/time phrases into timestamps.
// Clients agree on a visit time in chat and type it out however they like;
// the extractor pulls the first date-looking fragment out of the prose.
package datetext

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	layoutFull  = "02.01.2006 15:04"
	layoutShort = "02.01 15:04"

	// DayLayout is the date format admins type in chat.
	DayLayout = "02.01.2006"
	// ISODay is the storage format for slot dates.
	ISODay = "2006-01-02"
	// Clock is the storage format for slot times.
	Clock = "15:04"
)

// looseRe tolerates surrounding prose: "давайте 15.01 14:00 норм?"
var looseRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?\s+(\d{1,2}):(\d{2})`)

// Result is the outcome of an extraction attempt. OK is false when no valid
// date/time could be found; callers treat that as a prompt for manual input,
// never as an error.
type Result struct {
	OK bool
	At time.Time
}

// Resolved wraps a successfully extracted timestamp.
func Resolved(t time.Time) Result {
	return Result{OK: true, At: t}
}

// Unresolved is the null result.
func Unresolved() Result {
	return Result{}
}

// Extract attempts to resolve text into a single timestamp. Format priority:
// strict "DD.MM.YYYY HH:MM", then strict "DD.MM HH:MM" (year defaults to the
// current year), then a permissive scan for the same shapes anywhere in the
// text. A missing year is never rolled over to the next year even if the
// resulting timestamp is in the past.
func Extract(text string, now time.Time) Result {
	loc := now.Location()
	trimmed := strings.TrimSpace(text)

	if t, err := time.ParseInLocation(layoutFull, trimmed, loc); err == nil {
		return Resolved(t)
	}

	if t, err := time.ParseInLocation(layoutShort, trimmed, loc); err == nil {
		return makeResult(t.Day(), int(t.Month()), now.Year(), t.Hour(), t.Minute(), loc)
	}

	m := looseRe.FindStringSubmatch(text)
	if m == nil {
		return Unresolved()
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	return makeResult(day, month, year, hour, minute, loc)
}

// makeResult builds a timestamp and rejects impossible calendar dates
// (time.Date would silently normalize 31.04 into 01.05).
func makeResult(day, month, year, hour, minute int, loc *time.Location) Result {
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return Unresolved()
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return Unresolved()
	}
	return Resolved(t)
}

// ParseDay converts an admin-typed "DD.MM.YYYY" date into ISO form.
func ParseDay(text string) (string, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	return t.Format(ISODay), nil
}

// ParseClock validates an "HH:MM" time-of-day string.
func ParseClock(text string) (string, error) {
	t, err := time.Parse(Clock, strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	return t.Format(Clock), nil
}
