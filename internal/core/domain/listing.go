package domain

import "time"

// EntryCursor marks the last entry of a page in (EntryDate, CreatedAt, EntryID) descending order.
type EntryCursor struct {
	EntryDate time.Time
	CreatedAt time.Time
	EntryID   string
}

// EntryFilter selects journal entries for a listing. Nil bounds are open; a
// zero Limit returns every matching entry.
type EntryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	After     *EntryCursor
}

// Matches reports whether the entry date lies inside the filter bounds (inclusive).
func (f EntryFilter) Matches(entryDate time.Time) bool {
	if f.StartDate != nil && entryDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && entryDate.After(*f.EndDate) {
		return false
	}
	return true
}

// Precedes reports whether an entry sorts before the cursor in listing order,
// i.e. whether it belongs on the page after the cursor.
func (c EntryCursor) Precedes(e JournalEntry) bool {
	if !e.EntryDate.Equal(c.EntryDate) {
		return e.EntryDate.Before(c.EntryDate)
	}
	if !e.CreatedAt.Equal(c.CreatedAt) {
		return e.CreatedAt.Before(c.CreatedAt)
	}
	return e.EntryID < c.EntryID
}
