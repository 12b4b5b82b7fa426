package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/statline/internal/domain/editlock"
	"github.com/riskibarqy/statline/internal/domain/stat"
)

var (
	ErrPersonNotFound   = errors.New("player is not part of this game")
	ErrDuplicatePerson  = errors.New("player already added to this game")
	ErrShiftNotFound    = errors.New("shift not found")
	ErrShiftActive      = errors.New("shift is still active")
	ErrInvalidShiftEdit = errors.New("invalid shift edit")
)

// Game is one tracked session. It owns its direct records and every player
// aggregate; sport and team are references that may be empty.
type Game struct {
	ID            string
	OwnerID       string
	Date          time.Time
	Opponent      string
	Location      string
	Notes         string
	IsCompleted   bool
	SportID       string
	TeamID        string
	TeamScore     int
	OpponentScore int
	Stats         stat.Book
	People        []*PersonGameStats
	Lock          editlock.Lease
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(id, ownerID string, date time.Time, now time.Time) *Game {
	return &Game{
		ID:        id,
		OwnerID:   ownerID,
		Date:      date,
		Stats:     stat.Book{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (g *Game) ValidateBasic() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(g.OwnerID) == "" {
		return fmt.Errorf("owner id is required")
	}
	if g.Date.IsZero() {
		return fmt.Errorf("game date is required")
	}
	if g.TeamScore < 0 || g.OpponentScore < 0 {
		return fmt.Errorf("scores cannot be negative")
	}
	return nil
}

// TotalPoints applies GamePolicy: direct records win when present.
func (g *Game) TotalPoints() int {
	children := make([]int, 0, len(g.People))
	for _, p := range g.People {
		children = append(children, p.TotalPoints())
	}
	return GamePolicy.Points(g.Stats, children)
}

// StatSuccesses totals made+count for the named stats under GamePolicy.
func (g *Game) StatSuccesses(names ...string) int {
	direct := 0
	for _, name := range names {
		direct += g.Stats.Successes(name)
	}
	children := make([]int, 0, len(g.People))
	for _, p := range g.People {
		total := 0
		for _, name := range names {
			total += p.Aggregated(name, stat.FieldMade) + p.Aggregated(name, stat.FieldCount)
		}
		children = append(children, total)
	}
	return GamePolicy.Combine(!g.Stats.IsEmpty(), direct, children)
}

func (g *Game) IsLocked(now time.Time) bool {
	return g.Lock.IsActive(now)
}

func (g *Game) Score() Score {
	return Score{Team: g.TeamScore, Opponent: g.OpponentScore}
}

func (g *Game) Person(personID string) (*PersonGameStats, bool) {
	for _, p := range g.People {
		if p.PersonID == personID {
			return p, true
		}
	}
	return nil, false
}

func (g *Game) AddPerson(p *PersonGameStats) error {
	if _, exists := g.Person(p.PersonID); exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePerson, p.PersonID)
	}
	if p.Stats == nil {
		p.Stats = stat.Book{}
	}
	g.People = append(g.People, p)
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (g *Game) Clone() *Game {
	copied := *g
	copied.Stats = g.Stats.Clone()
	copied.Lock = g.Lock.Clone()
	copied.People = make([]*PersonGameStats, 0, len(g.People))
	for _, p := range g.People {
		copied.People = append(copied.People, p.Clone())
	}
	return &copied
}
