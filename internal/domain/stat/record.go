package stat

import (
	"errors"
	"time"
)

var ErrUnknownField = errors.New("unknown stat field")

// Mode describes which counters a record is using. A record stays in one
// mode for its lifetime.
type Mode string

const (
	ModeUnused  Mode = "unused"
	ModeAttempt Mode = "attempt"
	ModeTally   Mode = "tally"
	ModeMixed   Mode = "mixed"
)

// Field names one counter of a record.
type Field string

const (
	FieldMade   Field = "made"
	FieldMissed Field = "missed"
	FieldCount  Field = "count"
)

func ParseField(raw string) (Field, error) {
	switch Field(raw) {
	case FieldMade, FieldMissed, FieldCount:
		return Field(raw), nil
	default:
		return "", ErrUnknownField
	}
}

// Record is the counter for one statistic within one scope (game, player or shift).
type Record struct {
	ID         string
	Name       string
	PointValue int
	Made       int
	Missed     int
	Count      int
	Timestamp  time.Time
}

func NewRecord(name string, pointValue int, now time.Time) *Record {
	return &Record{
		Name:       name,
		PointValue: pointValue,
		Timestamp:  now,
	}
}

func (r *Record) Total() int {
	return r.Made + r.Missed + r.Count
}

func (r *Record) Points() int {
	return r.PointValue * r.Made
}

// Successes counts made attempts and tallies, the value used for milestones.
func (r *Record) Successes() int {
	return r.Made + r.Count
}

func (r *Record) Attempts() int {
	return r.Made + r.Missed
}

func (r *Record) Mode() Mode {
	attempt := r.Made > 0 || r.Missed > 0
	tally := r.Count > 0
	switch {
	case attempt && tally:
		return ModeMixed
	case attempt:
		return ModeAttempt
	case tally:
		return ModeTally
	default:
		return ModeUnused
	}
}

func (r *Record) Value(field Field) int {
	switch field {
	case FieldMade:
		return r.Made
	case FieldMissed:
		return r.Missed
	case FieldCount:
		return r.Count
	default:
		return 0
	}
}

func (r *Record) Increment(field Field, now time.Time) {
	r.Adjust(field, 1, now)
}

// Decrement lowers field by one, never below zero.
func (r *Record) Decrement(field Field, now time.Time) {
	r.Adjust(field, -1, now)
}

// Adjust applies delta to field and clamps the result at zero.
func (r *Record) Adjust(field Field, delta int, now time.Time) {
	switch field {
	case FieldMade:
		r.Made = clampZero(r.Made + delta)
	case FieldMissed:
		r.Missed = clampZero(r.Missed + delta)
	case FieldCount:
		r.Count = clampZero(r.Count + delta)
	default:
		return
	}
	r.Timestamp = now
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
