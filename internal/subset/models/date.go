package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "subsets/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component. The zero value means
// "absent"; on a version's validUntil that reads as an open-ended interval.
type Date struct {
	t time.Time
}

// ParseDate validates a YYYY-MM-DD string. An empty string parses to the
// zero (absent) date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// MustDate is a test and fixture helper; it panics on invalid input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// String renders YYYY-MM-DD, or the empty string when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// Time exposes the underlying instant (midnight UTC) for store drivers.
func (d Date) Time() time.Time { return d.t }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
