package date

import "slices"

// SearchWindow is the number of days Nearest looks at before giving up.
const SearchWindow = 366

// Direction tells Nearest which way to walk the calendar.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
//
// A History of prices is typically sparse: non trading days are simply absent.
type History[T float32 | float64 | string] struct {
	days   []Date
	values []T
}

// Latest returns the latest date and value in the history, zero values
// when it is empty.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T) // return zero value of T
	}
	return h.days[last], h.values[last]
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// search returns the position of day in the history, or where it would be inserted.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Append adds a point to the history.
//
// Existing value at that date are overwritten.
func (h *History[T]) Append(on Date, q T) *History[T] {
	i, found := h.search(on)
	if found {
		// give higher priority to the last data
		h.values[i] = q
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, q)
	return h
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	var value T
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return value, false
}

// Nearest returns the closest day present in the history, starting at day and
// walking in direction dir for at most window days (day itself included).
//
// A window <= 0 means SearchWindow.
func (h *History[T]) Nearest(day Date, dir Direction, window int) (Date, T, bool) {
	if window <= 0 {
		window = SearchWindow
	}
	if dir == 0 {
		dir = Backward
	}
	on := day
	for range window {
		if v, ok := h.Get(on); ok {
			return on, v, true
		}
		on = on.Add(int(dir))
	}
	var zero T
	return Date{}, zero, false
}

// sortDates sorts dates in chronological order.
func sortDates(dates []Date) { slices.SortFunc(dates, Date.Compare) }
