package game

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestShift_PlusMinus(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	shift, _ := p.StartShift("s1", Score{Team: 10, Opponent: 8}, testNow)

	if _, ok := shift.PlusMinus(); ok {
		t.Fatalf("plus/minus must be undefined while active")
	}

	if !shift.End(&Score{Team: 16, Opponent: 10}, testNow.Add(5*time.Minute)) {
		t.Fatalf("expected end to apply")
	}
	got, ok := shift.PlusMinus()
	if !ok || got != 4 {
		t.Fatalf("expected plus/minus 4, got %d (defined=%t)", got, ok)
	}
	if shift.EndReason != EndReasonExplicit {
		t.Fatalf("expected explicit end reason, got %q", shift.EndReason)
	}
	if shift.Duration(testNow.Add(time.Hour)) != 5*time.Minute {
		t.Fatalf("unexpected duration %v", shift.Duration(testNow.Add(time.Hour)))
	}
}

func TestShift_EndWithoutScoreLeavesPlusMinusUndefined(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	shift, _ := p.StartShift("s1", Score{}, testNow)
	shift.End(nil, testNow)

	if _, ok := shift.PlusMinus(); ok {
		t.Fatalf("plus/minus must be undefined without ending scores")
	}
}

func TestShift_EndIsIdempotent(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	shift, _ := p.StartShift("s1", Score{}, testNow)
	shift.End(&Score{Team: 2}, testNow.Add(time.Minute))

	if shift.End(&Score{Team: 9, Opponent: 9}, testNow.Add(time.Hour)) {
		t.Fatalf("second end must be a no-op")
	}
	if !shift.EndTime.Equal(testNow.Add(time.Minute)) || *shift.EndingTeamScore != 2 {
		t.Fatalf("second end must not change stored fields")
	}
}

func TestPersonGameStats_StartShiftSupersedesActive(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	first, superseded := p.StartShift("s1", Score{}, testNow)
	if superseded != nil {
		t.Fatalf("nothing to supersede on first shift")
	}

	second, superseded := p.StartShift("s2", Score{Team: 4}, testNow.Add(time.Minute))
	if superseded != first {
		t.Fatalf("expected first shift to be superseded")
	}
	if first.IsActive() || first.EndReason != EndReasonSuperseded {
		t.Fatalf("expected first shift ended as superseded, got active=%t reason=%q", first.IsActive(), first.EndReason)
	}
	if _, ok := first.PlusMinus(); ok {
		t.Fatalf("superseded shift must not have plus/minus")
	}
	if p.ActiveShift() != second {
		t.Fatalf("expected the new shift to be active")
	}

	if _, ok := p.EndShift(nil, testNow.Add(2*time.Minute)); !ok {
		t.Fatalf("expected active shift to end")
	}
	third, _ := p.StartShift("s3", Score{}, testNow.Add(3*time.Minute))

	for i, s := range p.Shifts {
		if s.Number != i+1 {
			t.Fatalf("expected shift number %d, got %d", i+1, s.Number)
		}
	}
	if third.Number != 3 {
		t.Fatalf("expected third shift number 3, got %d", third.Number)
	}
}

func TestPersonGameStats_EndShiftWithoutActive(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	if _, ok := p.EndShift(&Score{}, testNow); ok {
		t.Fatalf("expected no-op when no shift is active")
	}
}

func TestPersonGameStats_TotalPlusMinusSkipsUndefined(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	p.StartShift("s1", Score{}, testNow)
	p.StartShift("s2", Score{Team: 2, Opponent: 2}, testNow)
	p.EndShift(&Score{Team: 7, Opponent: 4}, testNow)

	if got := p.TotalPlusMinus(); got != 3 {
		t.Fatalf("expected total plus/minus 3, got %d", got)
	}
}

func TestShift_Apply(t *testing.T) {
	p := NewPersonGameStats("pgs-1", "jack", "Jack")
	active, _ := p.StartShift("s1", Score{}, testNow)
	end := testNow.Add(time.Minute)

	if err := active.Apply(ShiftEdit{EndTime: &end}); !errors.Is(err, ErrShiftActive) {
		t.Fatalf("expected ErrShiftActive, got %v", err)
	}
	if err := active.Apply(ShiftEdit{StartingTeamScore: intPtr(3), EndingTeamScore: intPtr(6)}); !errors.Is(err, ErrShiftActive) {
		t.Fatalf("expected ErrShiftActive for ending score on active shift, got %v", err)
	}
	if active.EndingTeamScore != nil || active.StartingTeamScore != 0 {
		t.Fatalf("expected rejected edit to leave the shift untouched, got %+v", active)
	}
	if got := p.TotalPlusMinus(); got != 0 {
		t.Fatalf("expected active shift excluded from plus/minus, got %d", got)
	}

	p.StartShift("s2", Score{}, testNow.Add(2*time.Minute))
	if err := active.Apply(ShiftEdit{EndingTeamScore: intPtr(6), EndingOpponentScore: intPtr(1)}); err != nil {
		t.Fatalf("apply ending scores: %v", err)
	}
	if got, ok := active.PlusMinus(); !ok || got != 5 {
		t.Fatalf("expected corrected plus/minus 5, got %d (defined=%t)", got, ok)
	}

	early := testNow.Add(-time.Hour)
	if err := active.Apply(ShiftEdit{EndTime: &early}); !errors.Is(err, ErrInvalidShiftEdit) {
		t.Fatalf("expected ErrInvalidShiftEdit, got %v", err)
	}
	if err := active.Apply(ShiftEdit{StartingTeamScore: intPtr(-1)}); !errors.Is(err, ErrInvalidShiftEdit) {
		t.Fatalf("expected ErrInvalidShiftEdit for negative score, got %v", err)
	}
}
