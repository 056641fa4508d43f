package stats

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a local calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day in the user's wall-clock time, e.g. "2026-03-14".
// It is the key for every daily aggregate; it never carries a time of day.
type Date string

// LocalDate converts a timestamp to the calendar date seen by a user in loc.
// A nil location means UTC.
func LocalDate(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc).Format(DateLayout))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(t.Format(DateLayout)), nil
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Time returns midnight UTC of d, or the zero time when d is malformed.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// OffsetDays returns the date n days after d (n may be negative).
func (d Date) OffsetDays(n int) Date {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(DateLayout))
}

func (d Date) String() string { return string(d) }

// DaysBetween returns b - a in whole calendar days.
func DaysBetween(a, b Date) int {
	ta, tb := a.Time(), b.Time()
	if ta.IsZero() || tb.IsZero() {
		return 0
	}
	// both are UTC midnights, so the division is exact
	return int(tb.Sub(ta).Hours() / 24)
}

// LoadLocation resolves an IANA timezone name, falling back to UTC for
// empty or unknown names.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Scan implements sql.Scanner. Drivers hand back DATE columns either as
// text or as time.Time depending on dialect.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case string:
		*d = Date(trimDate(v))
	case []byte:
		*d = Date(trimDate(string(v)))
	case time.Time:
		*d = Date(v.Format(DateLayout))
	default:
		return fmt.Errorf("cannot scan %T into stats.Date", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

func trimDate(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
