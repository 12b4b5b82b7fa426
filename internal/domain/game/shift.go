package game

import (
	"time"

	"github.com/riskibarqy/statline/internal/domain/stat"
)

// EndReason records how a shift left the active state.
type EndReason string

const (
	EndReasonNone       EndReason = ""
	EndReasonExplicit   EndReason = "explicit"
	EndReasonSuperseded EndReason = "superseded"
)

// Score is a team/opponent scoreboard snapshot.
type Score struct {
	Team     int
	Opponent int
}

// Shift is one on-court interval for a player.
type Shift struct {
	ID                    string
	Number                int
	StartTime             time.Time
	EndTime               *time.Time
	StartingTeamScore     int
	StartingOpponentScore int
	EndingTeamScore       *int
	EndingOpponentScore   *int
	EndReason             EndReason
	Stats                 stat.Book
}

func newShift(id string, number int, start Score, now time.Time) *Shift {
	return &Shift{
		ID:                    id,
		Number:                number,
		StartTime:             now,
		StartingTeamScore:     start.Team,
		StartingOpponentScore: start.Opponent,
		Stats:                 stat.Book{},
	}
}

func (s *Shift) IsActive() bool {
	return s.EndTime == nil
}

func (s *Shift) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime)
}

// PlusMinus is defined only for an ended shift with both ending scores known.
func (s *Shift) PlusMinus() (int, bool) {
	if s.IsActive() || s.EndingTeamScore == nil || s.EndingOpponentScore == nil {
		return 0, false
	}
	team := *s.EndingTeamScore - s.StartingTeamScore
	opponent := *s.EndingOpponentScore - s.StartingOpponentScore
	return team - opponent, true
}

func (s *Shift) Points() int {
	return s.Stats.Points()
}

// End closes an active shift. A nil score leaves plus/minus undefined. It
// reports false when the shift had already ended.
func (s *Shift) End(score *Score, now time.Time) bool {
	if !s.IsActive() {
		return false
	}
	ended := now
	s.EndTime = &ended
	s.EndReason = EndReasonExplicit
	if score != nil {
		team, opponent := score.Team, score.Opponent
		s.EndingTeamScore = &team
		s.EndingOpponentScore = &opponent
	}
	return true
}

func (s *Shift) supersede(now time.Time) {
	if !s.IsActive() {
		return
	}
	ended := now
	s.EndTime = &ended
	s.EndReason = EndReasonSuperseded
}

// ShiftEdit carries manual corrections. Nil fields are left untouched.
type ShiftEdit struct {
	StartTime             *time.Time
	EndTime               *time.Time
	StartingTeamScore     *int
	StartingOpponentScore *int
	EndingTeamScore       *int
	EndingOpponentScore   *int
}

// Apply corrects stored fields. Setting an end time or ending scores on an
// active shift is rejected; a shift is only ended through End or by being
// superseded.
func (s *Shift) Apply(edit ShiftEdit) error {
	if s.IsActive() && (edit.EndTime != nil || edit.EndingTeamScore != nil || edit.EndingOpponentScore != nil) {
		return ErrShiftActive
	}
	start := s.StartTime
	if edit.StartTime != nil {
		start = *edit.StartTime
	}
	end := s.EndTime
	if edit.EndTime != nil {
		v := *edit.EndTime
		end = &v
	}
	if end != nil && end.Before(start) {
		return ErrInvalidShiftEdit
	}
	for _, v := range []*int{edit.StartingTeamScore, edit.StartingOpponentScore, edit.EndingTeamScore, edit.EndingOpponentScore} {
		if v != nil && *v < 0 {
			return ErrInvalidShiftEdit
		}
	}

	s.StartTime = start
	s.EndTime = end
	if edit.StartingTeamScore != nil {
		s.StartingTeamScore = *edit.StartingTeamScore
	}
	if edit.StartingOpponentScore != nil {
		s.StartingOpponentScore = *edit.StartingOpponentScore
	}
	if edit.EndingTeamScore != nil {
		v := *edit.EndingTeamScore
		s.EndingTeamScore = &v
	}
	if edit.EndingOpponentScore != nil {
		v := *edit.EndingOpponentScore
		s.EndingOpponentScore = &v
	}
	return nil
}

func (s *Shift) Clone() *Shift {
	copied := *s
	if s.EndTime != nil {
		v := *s.EndTime
		copied.EndTime = &v
	}
	if s.EndingTeamScore != nil {
		v := *s.EndingTeamScore
		copied.EndingTeamScore = &v
	}
	if s.EndingOpponentScore != nil {
		v := *s.EndingOpponentScore
		copied.EndingOpponentScore = &v
	}
	copied.Stats = s.Stats.Clone()
	return &copied
}
