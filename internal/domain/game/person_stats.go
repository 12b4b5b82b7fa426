package game

import (
	"time"

	"github.com/riskibarqy/statline/internal/domain/stat"
)

// PersonGameStats holds one player's stats for one game: records kept outside
// any shift plus the ordered shifts.
type PersonGameStats struct {
	ID         string
	PersonID   string
	PersonName string
	Stats      stat.Book
	Shifts     []*Shift
}

func NewPersonGameStats(id, personID, personName string) *PersonGameStats {
	return &PersonGameStats{
		ID:         id,
		PersonID:   personID,
		PersonName: personName,
		Stats:      stat.Book{},
	}
}

// ActiveShift returns the open shift, if any.
func (p *PersonGameStats) ActiveShift() *Shift {
	for i := len(p.Shifts) - 1; i >= 0; i-- {
		if p.Shifts[i].IsActive() {
			return p.Shifts[i]
		}
	}
	return nil
}

// StartShift opens a new shift numbered after every existing one. An already
// active shift is superseded first and keeps no ending score.
func (p *PersonGameStats) StartShift(id string, start Score, now time.Time) (started *Shift, superseded *Shift) {
	if active := p.ActiveShift(); active != nil {
		active.supersede(now)
		superseded = active
	}

	started = newShift(id, len(p.Shifts)+1, start, now)
	p.Shifts = append(p.Shifts, started)
	return started, superseded
}

// EndShift ends the active shift. It reports false when no shift is active.
func (p *PersonGameStats) EndShift(score *Score, now time.Time) (*Shift, bool) {
	active := p.ActiveShift()
	if active == nil {
		return nil, false
	}
	return active, active.End(score, now)
}

func (p *PersonGameStats) ShiftByNumber(number int) (*Shift, bool) {
	for _, s := range p.Shifts {
		if s.Number == number {
			return s, true
		}
	}
	return nil, false
}

func (p *PersonGameStats) TotalPoints() int {
	children := make([]int, 0, len(p.Shifts))
	for _, s := range p.Shifts {
		children = append(children, s.Points())
	}
	return PersonPolicy.Points(p.Stats, children)
}

// TotalPlusMinus sums the shifts whose plus/minus is defined.
func (p *PersonGameStats) TotalPlusMinus() int {
	total := 0
	for _, s := range p.Shifts {
		if v, ok := s.PlusMinus(); ok {
			total += v
		}
	}
	return total
}

func (p *PersonGameStats) Aggregated(name string, field stat.Field) int {
	total := p.Stats.Value(name, field)
	for _, s := range p.Shifts {
		total += s.Stats.Value(name, field)
	}
	return total
}

func (p *PersonGameStats) AggregatedMade(name string) int {
	return p.Aggregated(name, stat.FieldMade)
}

func (p *PersonGameStats) AggregatedMissed(name string) int {
	return p.Aggregated(name, stat.FieldMissed)
}

func (p *PersonGameStats) AggregatedCount(name string) int {
	return p.Aggregated(name, stat.FieldCount)
}

// AggregatedNames lists every stat name used directly or in a shift.
func (p *PersonGameStats) AggregatedNames() []string {
	merged := stat.Book{}
	for name, rec := range p.Stats {
		merged[name] = rec
	}
	for _, s := range p.Shifts {
		for name, rec := range s.Stats {
			merged[name] = rec
		}
	}
	return merged.Names()
}

func (p *PersonGameStats) Clone() *PersonGameStats {
	copied := *p
	copied.Stats = p.Stats.Clone()
	copied.Shifts = make([]*Shift, 0, len(p.Shifts))
	for _, s := range p.Shifts {
		copied.Shifts = append(copied.Shifts, s.Clone())
	}
	return &copied
}
