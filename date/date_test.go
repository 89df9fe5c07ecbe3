package date

import (
	"errors"
	"testing"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in   string
		want Date
	}{
		{"2025-01-15", New(2025, 1, 15)},
		{" 2024-02-29 ", New(2024, 2, 29)},
		{"1999-12-31", New(1999, 12, 31)},
	}
	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"2025-1-5",    // not zero padded
		"2025/01/15",  // wrong separator
		"15-01-2025",  // wrong order
		"2025-01-32",  // would roll into February
		"2025-02-29",  // not a leap year
		"2025-13-01",  // month out of range
		"2025-00-10",  // month zero
		"2025-01-00",  // day zero
		"20a5-01-15",  // non numeric
		"2025-+1-15",  // sign is not a digit
		"2025-01-15T", // trailing garbage
	} {
		if d, err := Parse(in); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Parse(%q) = %v, %v want ErrInvalidDate", in, d, err)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"2025-01-15", "2025-01-15", 0},
		{"2025-01-15", "2025-02-02", 18},
		{"2024-01-01", "2025-01-01", 366},
		{"2025-03-29", "2025-03-31", 2}, // across a DST change in Europe, irrelevant in UTC
		{"2025-02-02", "2025-01-15", 0}, // clamped
		{"1900-01-01", "2100-01-01", 73049},
	}
	for _, tc := range testCases {
		if got := DaysBetween(MustParse(tc.a), MustParse(tc.b)); got != tc.want {
			t.Errorf("DaysBetween(%s, %s) = %d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestUnion(t *testing.T) {
	a := []Date{New(2025, 2, 2), New(2025, 1, 15), New(2025, 2, 2)}
	b := []Date{New(2025, 4, 28)}
	got := Union(a, b)
	want := []Date{New(2025, 1, 15), New(2025, 2, 2), New(2025, 4, 28)}
	if len(got) != len(want) {
		t.Fatalf("Union() = %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Union()[%d] = %v want %v", i, got[i], want[i])
		}
	}
	// the input must not be sorted in place
	if a[0] != New(2025, 2, 2) {
		t.Errorf("Union() modified its input: %v", a)
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, 4, 28)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() unexpected error %v", err)
	}
	if string(data) != `"2025-04-28"` {
		t.Errorf("MarshalJSON() = %s want %q", data, "2025-04-28")
	}
	var got Date
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() unexpected error %v", err)
	}
	if got != d {
		t.Errorf("UnmarshalJSON() = %v want %v", got, d)
	}
	if err := got.UnmarshalJSON([]byte(`"2025-04-31"`)); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("UnmarshalJSON(2025-04-31) error = %v want ErrInvalidDate", err)
	}
}
