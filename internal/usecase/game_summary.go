package usecase

import (
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
)

// StatLine is one stat's counters within a scope.
type StatLine struct {
	Name       string
	PointValue int
	Made       int
	Missed     int
	Count      int
	Points     int
}

type ShiftLine struct {
	Number        int
	StartTime     time.Time
	EndTime       *time.Time
	Duration      time.Duration
	EndReason     game.EndReason
	StartingScore game.Score
	EndingScore   *game.Score
	PlusMinus     *int
	Points        int
	IsActive      bool
}

type PlayerLine struct {
	PersonID   string
	PersonName string
	Points     int
	PlusMinus  int
	Stats      []StatLine
	Shifts     []ShiftLine
}

// GameSummary is the read model served for a game. Totals are derived on
// every build, never stored.
type GameSummary struct {
	Game        *game.Game
	TotalPoints int
	Policy      game.AggregationPolicy
	Stats       []StatLine
	Players     []PlayerLine
}

func BuildGameSummary(g *game.Game, now time.Time) GameSummary {
	summary := GameSummary{
		Game:        g,
		TotalPoints: g.TotalPoints(),
		Policy:      game.GamePolicy,
		Stats:       statLines(g.Stats),
		Players:     make([]PlayerLine, 0, len(g.People)),
	}

	for _, p := range g.People {
		line := PlayerLine{
			PersonID:   p.PersonID,
			PersonName: p.PersonName,
			Points:     p.TotalPoints(),
			PlusMinus:  p.TotalPlusMinus(),
			Shifts:     make([]ShiftLine, 0, len(p.Shifts)),
		}
		for _, name := range p.AggregatedNames() {
			line.Stats = append(line.Stats, aggregatedLine(p, name))
		}
		for _, s := range p.Shifts {
			line.Shifts = append(line.Shifts, shiftLine(s, now))
		}
		summary.Players = append(summary.Players, line)
	}
	return summary
}

func statLines(book stat.Book) []StatLine {
	out := make([]StatLine, 0, len(book))
	for _, rec := range book.Records() {
		out = append(out, StatLine{
			Name:       rec.Name,
			PointValue: rec.PointValue,
			Made:       rec.Made,
			Missed:     rec.Missed,
			Count:      rec.Count,
			Points:     rec.Points(),
		})
	}
	return out
}

func aggregatedLine(p *game.PersonGameStats, name string) StatLine {
	line := StatLine{
		Name:   name,
		Made:   p.AggregatedMade(name),
		Missed: p.AggregatedMissed(name),
		Count:  p.AggregatedCount(name),
	}
	if rec, ok := p.Stats.Get(name); ok {
		line.PointValue = rec.PointValue
	} else {
		for _, s := range p.Shifts {
			if rec, ok := s.Stats.Get(name); ok {
				line.PointValue = rec.PointValue
				break
			}
		}
	}
	line.Points = line.PointValue * line.Made
	return line
}

func shiftLine(s *game.Shift, now time.Time) ShiftLine {
	line := ShiftLine{
		Number:        s.Number,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Duration:      s.Duration(now),
		EndReason:     s.EndReason,
		StartingScore: game.Score{Team: s.StartingTeamScore, Opponent: s.StartingOpponentScore},
		Points:        s.Points(),
		IsActive:      s.IsActive(),
	}
	if s.EndingTeamScore != nil && s.EndingOpponentScore != nil {
		line.EndingScore = &game.Score{Team: *s.EndingTeamScore, Opponent: *s.EndingOpponentScore}
	}
	if pm, ok := s.PlusMinus(); ok {
		line.PlusMinus = &pm
	}
	return line
}
