package sqlstore

import "time"

const (
	scopeGame   = "game"
	scopePerson = "person"
	scopeShift  = "shift"
)

type gameTableModel struct {
	ID            string     `db:"id"`
	OwnerID       string     `db:"owner_id"`
	GameDate      time.Time  `db:"game_date"`
	Opponent      string     `db:"opponent"`
	Location      string     `db:"location"`
	Notes         string     `db:"notes"`
	IsCompleted   bool       `db:"is_completed"`
	SportID       string     `db:"sport_id"`
	TeamID        string     `db:"team_id"`
	TeamScore     int        `db:"team_score"`
	OpponentScore int        `db:"opponent_score"`
	LockHolder    string     `db:"lock_holder"`
	LockExpiresAt *time.Time `db:"lock_expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

type gamePersonTableModel struct {
	GameID     string `db:"game_id"`
	ID         string `db:"id"`
	PersonID   string `db:"person_id"`
	PersonName string `db:"person_name"`
	SortOrder  int    `db:"sort_order"`
}

type gameShiftTableModel struct {
	GameID                string     `db:"game_id"`
	ID                    string     `db:"id"`
	PersonStatsID         string     `db:"person_stats_id"`
	ShiftNumber           int        `db:"shift_number"`
	StartTime             time.Time  `db:"start_time"`
	EndTime               *time.Time `db:"end_time"`
	StartingTeamScore     int        `db:"starting_team_score"`
	StartingOpponentScore int        `db:"starting_opponent_score"`
	EndingTeamScore       *int       `db:"ending_team_score"`
	EndingOpponentScore   *int       `db:"ending_opponent_score"`
	EndReason             string     `db:"end_reason"`
}

type statRecordTableModel struct {
	GameID     string    `db:"game_id"`
	Scope      string    `db:"scope"`
	ScopeID    string    `db:"scope_id"`
	StatName   string    `db:"stat_name"`
	PointValue int       `db:"point_value"`
	Made       int       `db:"made"`
	Missed     int       `db:"missed"`
	Tally      int       `db:"tally"`
	RecordedAt time.Time `db:"recorded_at"`
}

type achievementLedgerTableModel struct {
	UserID      string    `db:"user_id"`
	TotalPoints int       `db:"total_points"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type achievementUnlockTableModel struct {
	UserID        string    `db:"user_id"`
	AchievementID string    `db:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at"`
}
