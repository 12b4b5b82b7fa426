package httpapi

import (
	"time"

	"github.com/riskibarqy/statline/internal/domain/achievement"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/usecase"
)

type createGameRequest struct {
	Date     *time.Time `json:"date"`
	Opponent string     `json:"opponent" validate:"max=120"`
	Location string     `json:"location" validate:"max=120"`
	Notes    string     `json:"notes" validate:"max=2000"`
	SportID  string     `json:"sport_id" validate:"max=64"`
	TeamID   string     `json:"team_id" validate:"max=64"`
}

type updateGameRequest struct {
	Date          *time.Time `json:"date"`
	Opponent      *string    `json:"opponent" validate:"omitempty,max=120"`
	Location      *string    `json:"location" validate:"omitempty,max=120"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
	TeamScore     *int       `json:"team_score" validate:"omitempty,gte=0"`
	OpponentScore *int       `json:"opponent_score" validate:"omitempty,gte=0"`
}

type addPlayerRequest struct {
	PersonID   string `json:"person_id" validate:"required,max=64"`
	PersonName string `json:"person_name" validate:"max=120"`
}

type adjustStatRequest struct {
	PersonID    string `json:"person_id" validate:"max=64"`
	ShiftNumber int    `json:"shift_number" validate:"gte=0"`
	StatName    string `json:"stat" validate:"required,max=32"`
	PointValue  int    `json:"point_value" validate:"gte=0,lte=10"`
	Field       string `json:"field" validate:"required,oneof=made missed count"`
	Delta       int    `json:"delta" validate:"required"`
}

type editShiftRequest struct {
	StartTime             *time.Time `json:"start_time"`
	EndTime               *time.Time `json:"end_time"`
	StartingTeamScore     *int       `json:"starting_team_score" validate:"omitempty,gte=0"`
	StartingOpponentScore *int       `json:"starting_opponent_score" validate:"omitempty,gte=0"`
	EndingTeamScore       *int       `json:"ending_team_score" validate:"omitempty,gte=0"`
	EndingOpponentScore   *int       `json:"ending_opponent_score" validate:"omitempty,gte=0"`
}

type recordStatRequest struct {
	StatName   string `json:"stat" validate:"required,max=32"`
	PointValue int    `json:"point_value" validate:"gte=0,lte=10"`
}

type recordCountRequest struct {
	StatName string `json:"stat" validate:"required,max=32"`
}

type selectPlayerRequest struct {
	PersonID string `json:"person_id" validate:"required,max=64"`
}

type scoreRequest struct {
	Team     int `json:"team" validate:"gte=0"`
	Opponent int `json:"opponent" validate:"gte=0"`
}

// shiftScoreRequest leaves Score nil to fall back to the game scoreboard on
// start, or to end a shift without plus/minus.
type shiftScoreRequest struct {
	Score *scoreRequest `json:"score" validate:"omitempty"`
}

type streakRequest struct {
	Streak int `json:"streak" validate:"gte=0"`
}

type lockDTO struct {
	Holder    string     `json:"holder,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type gameDTO struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Date          time.Time `json:"date"`
	Opponent      string    `json:"opponent"`
	Location      string    `json:"location"`
	Notes         string    `json:"notes"`
	IsCompleted   bool      `json:"is_completed"`
	SportID       string    `json:"sport_id,omitempty"`
	TeamID        string    `json:"team_id,omitempty"`
	TeamScore     int       `json:"team_score"`
	OpponentScore int       `json:"opponent_score"`
	TotalPoints   int       `json:"total_points"`
	Players       int       `json:"players"`
	Lock          *lockDTO  `json:"lock,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type statLineDTO struct {
	Name       string `json:"name"`
	PointValue int    `json:"point_value"`
	Made       int    `json:"made"`
	Missed     int    `json:"missed"`
	Count      int    `json:"count"`
	Points     int    `json:"points"`
}

type scoreDTO struct {
	Team     int `json:"team"`
	Opponent int `json:"opponent"`
}

type shiftLineDTO struct {
	Number          int        `json:"number"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	EndReason       string     `json:"end_reason,omitempty"`
	StartingScore   scoreDTO   `json:"starting_score"`
	EndingScore     *scoreDTO  `json:"ending_score,omitempty"`
	PlusMinus       *int       `json:"plus_minus,omitempty"`
	Points          int        `json:"points"`
	IsActive        bool       `json:"is_active"`
}

type playerLineDTO struct {
	PersonID   string         `json:"person_id"`
	PersonName string         `json:"person_name"`
	Points     int            `json:"points"`
	PlusMinus  int            `json:"plus_minus"`
	Stats      []statLineDTO  `json:"stats"`
	Shifts     []shiftLineDTO `json:"shifts"`
}

type gameSummaryDTO struct {
	Game        gameDTO         `json:"game"`
	Aggregation string          `json:"aggregation"`
	Stats       []statLineDTO   `json:"stats"`
	Players     []playerLineDTO `json:"players"`
}

type pendingUndoDTO struct {
	Kind       string `json:"kind"`
	StatName   string `json:"stat"`
	PointValue int    `json:"point_value"`
}

type sessionDTO struct {
	SessionID   string          `json:"session_id"`
	UserID      string          `json:"user_id"`
	PersonID    string          `json:"person_id,omitempty"`
	PendingUndo *pendingUndoDTO `json:"pending_undo,omitempty"`
	Summary     gameSummaryDTO  `json:"summary"`
}

type lockStatusDTO struct {
	GameID          string     `json:"game_id"`
	Holder          string     `json:"holder,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsLocked        bool       `json:"is_locked"`
	IsLockedByOther bool       `json:"is_locked_by_other"`
	CanEdit         bool       `json:"can_edit"`
}

type achievementDTO struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Points     int        `json:"points"`
	Metric     string     `json:"metric"`
	Threshold  int        `json:"threshold"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

type achievementsDTO struct {
	UserID       string           `json:"user_id"`
	TotalPoints  int              `json:"total_points"`
	Achievements []achievementDTO `json:"achievements"`
}

type completeGameDTO struct {
	Game     gameDTO          `json:"game"`
	Unlocked []achievementDTO `json:"unlocked"`
}

type seasonGameDTO struct {
	GameID    string    `json:"game_id"`
	Date      time.Time `json:"date"`
	Opponent  string    `json:"opponent"`
	Made      int       `json:"made"`
	Missed    int       `json:"missed"`
	Count     int       `json:"count"`
	Value     int       `json:"value"`
	Points    int       `json:"points"`
	PlusMinus int       `json:"plus_minus"`
}

type playerSeasonDTO struct {
	PersonID     string          `json:"person_id"`
	StatName     string          `json:"stat"`
	GamesPlayed  int             `json:"games_played"`
	Total        int             `json:"total"`
	Average      float64         `json:"average"`
	High         int             `json:"high"`
	TotalMade    int             `json:"total_made"`
	TotalMissed  int             `json:"total_missed"`
	TotalCount   int             `json:"total_count"`
	CareerPoints int             `json:"career_points"`
	Games        []seasonGameDTO `json:"games"`
}

func gameToDTO(g *game.Game) gameDTO {
	out := gameDTO{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		Date:          g.Date,
		Opponent:      g.Opponent,
		Location:      g.Location,
		Notes:         g.Notes,
		IsCompleted:   g.IsCompleted,
		SportID:       g.SportID,
		TeamID:        g.TeamID,
		TeamScore:     g.TeamScore,
		OpponentScore: g.OpponentScore,
		TotalPoints:   g.TotalPoints(),
		Players:       len(g.People),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
	if g.Lock.IsSet() {
		out.Lock = &lockDTO{Holder: g.Lock.Holder, ExpiresAt: g.Lock.ExpiresAt}
	}
	return out
}

func summaryToDTO(summary usecase.GameSummary) gameSummaryDTO {
	out := gameSummaryDTO{
		Game:        gameToDTO(summary.Game),
		Aggregation: string(summary.Policy),
		Stats:       statLinesToDTO(summary.Stats),
		Players:     make([]playerLineDTO, 0, len(summary.Players)),
	}
	for _, p := range summary.Players {
		line := playerLineDTO{
			PersonID:   p.PersonID,
			PersonName: p.PersonName,
			Points:     p.Points,
			PlusMinus:  p.PlusMinus,
			Stats:      statLinesToDTO(p.Stats),
			Shifts:     make([]shiftLineDTO, 0, len(p.Shifts)),
		}
		for _, s := range p.Shifts {
			shift := shiftLineDTO{
				Number:          s.Number,
				StartTime:       s.StartTime,
				EndTime:         s.EndTime,
				DurationSeconds: int64(s.Duration / time.Second),
				EndReason:       string(s.EndReason),
				StartingScore:   scoreDTO{Team: s.StartingScore.Team, Opponent: s.StartingScore.Opponent},
				PlusMinus:       s.PlusMinus,
				Points:          s.Points,
				IsActive:        s.IsActive,
			}
			if s.EndingScore != nil {
				shift.EndingScore = &scoreDTO{Team: s.EndingScore.Team, Opponent: s.EndingScore.Opponent}
			}
			line.Shifts = append(line.Shifts, shift)
		}
		out.Players = append(out.Players, line)
	}
	return out
}

func statLinesToDTO(lines []usecase.StatLine) []statLineDTO {
	out := make([]statLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, statLineDTO{
			Name:       l.Name,
			PointValue: l.PointValue,
			Made:       l.Made,
			Missed:     l.Missed,
			Count:      l.Count,
			Points:     l.Points,
		})
	}
	return out
}

func sessionToDTO(view usecase.SessionView, now time.Time) sessionDTO {
	out := sessionDTO{
		SessionID: view.SessionID,
		UserID:    view.UserID,
		PersonID:  view.PersonID,
		Summary:   summaryToDTO(usecase.BuildGameSummary(view.Game, now)),
	}
	if view.PendingUndo != nil {
		out.PendingUndo = &pendingUndoDTO{
			Kind:       string(view.PendingUndo.Kind),
			StatName:   view.PendingUndo.StatName,
			PointValue: view.PendingUndo.PointValue,
		}
	}
	return out
}

func lockStatusToDTO(status usecase.LockStatus) lockStatusDTO {
	return lockStatusDTO{
		GameID:          status.GameID,
		Holder:          status.Holder,
		ExpiresAt:       status.ExpiresAt,
		IsLocked:        status.IsLocked,
		IsLockedByOther: status.IsLockedByOther,
		CanEdit:         status.CanEdit,
	}
}

func achievementToDTO(rule achievement.Rule, ledger *achievement.Ledger) achievementDTO {
	out := achievementDTO{
		ID:        rule.ID,
		Title:     rule.Title,
		Points:    rule.Points,
		Metric:    string(rule.Metric),
		Threshold: rule.Threshold,
	}
	if ledger != nil {
		if at, ok := ledger.Unlocked[rule.ID]; ok {
			out.Unlocked = true
			out.UnlockedAt = &at
		}
	}
	return out
}

func rulesToDTO(rules []achievement.Rule, ledger *achievement.Ledger) []achievementDTO {
	out := make([]achievementDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, achievementToDTO(rule, ledger))
	}
	return out
}

func seasonToDTO(season usecase.PlayerSeason) playerSeasonDTO {
	out := playerSeasonDTO{
		PersonID:     season.PersonID,
		StatName:     season.StatName,
		GamesPlayed:  season.GamesPlayed,
		Total:        season.Total,
		Average:      season.Average,
		High:         season.High,
		TotalMade:    season.TotalMade,
		TotalMissed:  season.TotalMissed,
		TotalCount:   season.TotalCount,
		CareerPoints: season.CareerPoints,
		Games:        make([]seasonGameDTO, 0, len(season.Games)),
	}
	for _, line := range season.Games {
		out.Games = append(out.Games, seasonGameDTO{
			GameID:    line.GameID,
			Date:      line.Date,
			Opponent:  line.Opponent,
			Made:      line.Made,
			Missed:    line.Missed,
			Count:     line.Count,
			Value:     line.Value,
			Points:    line.Points,
			PlusMinus: line.PlusMinus,
		})
	}
	return out
}
