// Package date implements calendar dates with day granularity and sparse
// date-keyed series.
package date

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

const Day = 24 * time.Hour

// ErrInvalidDate is returned for any string that is not a strict YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid date")

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of that day.
func (d Date) Time() time.Time { return d.time() }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 depending on d being before, equal or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Parse parses a strict YYYY-MM-DD date.
//
// Surrounding white space is ignored. Dates that would roll over into another
// day (2025-02-30, 2025-01-32) are rejected instead of being normalized.
func Parse(str string) (Date, error) {
	s := strings.TrimSpace(str)
	if len(s) != len(DateFormat) || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("%w %q want format YYYY-MM-DD", ErrInvalidDate, str)
	}
	y, err1 := digits(s[0:4])
	m, err2 := digits(s[5:7])
	d, err3 := digits(s[8:10])
	if err := errors.Join(err1, err2, err3); err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, str, err)
	}
	on := New(y, time.Month(m), d)
	if on.y != y || on.m != time.Month(m) || on.d != d {
		return Date{}, fmt.Errorf("%w %q: out of calendar range", ErrInvalidDate, str)
	}
	return on, nil
}

// digits parses an unsigned decimal made of ASCII digits only.
func digits(s string) (int, error) {
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non numeric component %q", s)
		}
	}
	return strconv.Atoi(s)
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// DaysBetween returns the number of calendar days from a to b.
//
// The result is never negative: if b is before a it returns 0.
func DaysBetween(a, b Date) int {
	n := (b.time().Unix() - a.time().Unix()) / int64(Day/time.Second)
	return int(max(0, n))
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// iterate returns an iterator over all unique, sorted dates from multiple series of dates.
//
// Each series must already be sorted.
func iterate(series ...[]Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		indexes := make([]int, len(series))
		// find the reached mins
		times := make([]Date, 0, len(series))
		for {
			times = times[:0] //empty the slice again
			for i, index := range indexes {
				if index < len(series[i]) {
					times = append(times, series[i][index])
				}
			}
			if len(times) == 0 {
				// All series have been consumed, exit.
				return
			}
			m := times[0]
			for _, t := range times {
				if t.Before(m) {
					m = t
				}
			}
			// now consume every head equal to the min, including duplicates
			for i := range indexes {
				for indexes[i] < len(series[i]) && series[i][indexes[i]] == m {
					indexes[i]++
				}
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Union returns the unique dates of all series in ascending order.
func Union(series ...[]Date) []Date {
	sorted := make([][]Date, 0, len(series))
	for _, s := range series {
		s = append([]Date(nil), s...)
		sortDates(s)
		sorted = append(sorted, s)
	}
	var out []Date
	for d := range iterate(sorted...) {
		out = append(out, d)
	}
	return out
}
