package stat

import (
	"sort"
	"time"
)

// Book holds the records of one scope keyed by stat name.
type Book map[string]*Record

// Ensure returns the record for name, creating it with pointValue when it does
// not exist yet. The point value of an existing record is never changed.
func (b Book) Ensure(name string, pointValue int, now time.Time) *Record {
	if rec, ok := b[name]; ok {
		return rec
	}
	rec := NewRecord(name, pointValue, now)
	b[name] = rec
	return rec
}

func (b Book) Get(name string) (*Record, bool) {
	rec, ok := b[name]
	return rec, ok
}

func (b Book) IsEmpty() bool {
	return len(b) == 0
}

func (b Book) Points() int {
	total := 0
	for _, rec := range b {
		total += rec.Points()
	}
	return total
}

func (b Book) Value(name string, field Field) int {
	rec, ok := b[name]
	if !ok {
		return 0
	}
	return rec.Value(field)
}

// Names returns stat names in a stable order.
func (b Book) Names() []string {
	out := make([]string, 0, len(b))
	for name := range b {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Records returns the records sorted by name.
func (b Book) Records() []*Record {
	out := make([]*Record, 0, len(b))
	for _, name := range b.Names() {
		out = append(out, b[name])
	}
	return out
}

func (b Book) Clone() Book {
	out := make(Book, len(b))
	for name, rec := range b {
		out[name] = rec.Clone()
	}
	return out
}

func (b Book) Successes(name string) int {
	rec, ok := b[name]
	if !ok {
		return 0
	}
	return rec.Successes()
}
