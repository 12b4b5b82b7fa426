package sqlstore

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/statline/internal/domain/editlock"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
)

const gameColumns = `id, owner_id, game_date, opponent, location, notes, is_completed, sport_id, team_id,
    team_score, opponent_score, lock_holder, lock_expires_at, created_at, updated_at`

// GameRepository stores each game as a row plus child rows for player
// aggregates, shifts and stat records. Save rewrites the child rows in one
// transaction.
type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (*game.Game, bool, error) {
	query := r.db.Rebind(`SELECT ` + gameColumns + ` FROM games WHERE id = ?`)

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, crerr.Wrapf(err, "get game id=%s", id)
	}

	games, err := r.hydrate(ctx, []gameTableModel{row})
	if err != nil {
		return nil, false, err
	}
	return games[0], true, nil
}

func (r *GameRepository) ListByOwner(ctx context.Context, ownerID string) ([]*game.Game, error) {
	query := r.db.Rebind(`SELECT ` + gameColumns + `
FROM games
WHERE owner_id = ?
ORDER BY game_date, id`)

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, crerr.Wrapf(err, "list games owner=%s", ownerID)
	}
	if len(rows) == 0 {
		return []*game.Game{}, nil
	}
	return r.hydrate(ctx, rows)
}

func (r *GameRepository) ListIDsByPerson(ctx context.Context, ownerID, personID string) ([]string, error) {
	query := r.db.Rebind(`
SELECT g.id
FROM games g
JOIN game_people p ON p.game_id = g.id
WHERE g.owner_id = ?
  AND p.person_id = ?
ORDER BY g.game_date, g.id`)

	ids := make([]string, 0)
	if err := r.db.SelectContext(ctx, &ids, query, ownerID, personID); err != nil {
		return nil, crerr.Wrapf(err, "list game ids owner=%s person=%s", ownerID, personID)
	}
	return ids, nil
}

func (r *GameRepository) Save(ctx context.Context, g *game.Game) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx for game save")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertGameQuery = `
INSERT INTO games (
    id, owner_id, game_date, opponent, location, notes, is_completed, sport_id, team_id,
    team_score, opponent_score, lock_holder, lock_expires_at, created_at, updated_at
) VALUES (
    :id, :owner_id, :game_date, :opponent, :location, :notes, :is_completed, :sport_id, :team_id,
    :team_score, :opponent_score, :lock_holder, :lock_expires_at, :created_at, :updated_at
)
ON CONFLICT (id) DO UPDATE SET
    owner_id = EXCLUDED.owner_id,
    game_date = EXCLUDED.game_date,
    opponent = EXCLUDED.opponent,
    location = EXCLUDED.location,
    notes = EXCLUDED.notes,
    is_completed = EXCLUDED.is_completed,
    sport_id = EXCLUDED.sport_id,
    team_id = EXCLUDED.team_id,
    team_score = EXCLUDED.team_score,
    opponent_score = EXCLUDED.opponent_score,
    lock_holder = EXCLUDED.lock_holder,
    lock_expires_at = EXCLUDED.lock_expires_at,
    updated_at = EXCLUDED.updated_at`

	if err := namedExec(ctx, tx, upsertGameQuery, toGameRow(g)); err != nil {
		return crerr.Wrapf(err, "upsert game id=%s", g.ID)
	}
	if err := deleteChildren(ctx, tx, g.ID); err != nil {
		return err
	}

	people, shifts, records := toChildRows(g)

	const insertPersonQuery = `
INSERT INTO game_people (game_id, id, person_id, person_name, sort_order)
VALUES (:game_id, :id, :person_id, :person_name, :sort_order)`
	for _, row := range people {
		if err := namedExec(ctx, tx, insertPersonQuery, row); err != nil {
			return crerr.Wrapf(err, "insert game person game=%s person=%s", g.ID, row.PersonID)
		}
	}

	const insertShiftQuery = `
INSERT INTO game_shifts (
    game_id, id, person_stats_id, shift_number, start_time, end_time,
    starting_team_score, starting_opponent_score, ending_team_score, ending_opponent_score, end_reason
) VALUES (
    :game_id, :id, :person_stats_id, :shift_number, :start_time, :end_time,
    :starting_team_score, :starting_opponent_score, :ending_team_score, :ending_opponent_score, :end_reason
)`
	for _, row := range shifts {
		if err := namedExec(ctx, tx, insertShiftQuery, row); err != nil {
			return crerr.Wrapf(err, "insert shift game=%s number=%d", g.ID, row.ShiftNumber)
		}
	}

	const insertRecordQuery = `
INSERT INTO stat_records (game_id, scope, scope_id, stat_name, point_value, made, missed, tally, recorded_at)
VALUES (:game_id, :scope, :scope_id, :stat_name, :point_value, :made, :missed, :tally, :recorded_at)`
	for _, row := range records {
		if err := namedExec(ctx, tx, insertRecordQuery, row); err != nil {
			return crerr.Wrapf(err, "insert stat record game=%s scope=%s name=%s", g.ID, row.Scope, row.StatName)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit game save tx")
	}
	return nil
}

// Delete removes child rows explicitly so sqlite connections without
// foreign key enforcement behave the same as postgres.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx for game delete")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM games WHERE id = ?`), id); err != nil {
		return crerr.Wrapf(err, "delete game id=%s", id)
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit game delete tx")
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sqlx.Tx, gameID string) error {
	for _, table := range []string{"stat_records", "game_shifts", "game_people"} {
		query := tx.Rebind(`DELETE FROM ` + table + ` WHERE game_id = ?`)
		if _, err := tx.ExecContext(ctx, query, gameID); err != nil {
			return crerr.Wrapf(err, "clear %s game=%s", table, gameID)
		}
	}
	return nil
}

// hydrate loads child rows for every game in one query per table.
func (r *GameRepository) hydrate(ctx context.Context, rows []gameTableModel) ([]*game.Game, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var people []gamePersonTableModel
	if err := r.selectIn(ctx, &people, `
SELECT game_id, id, person_id, person_name, sort_order
FROM game_people
WHERE game_id IN (?)
ORDER BY game_id, sort_order`, ids); err != nil {
		return nil, crerr.Wrap(err, "list game people")
	}

	var shifts []gameShiftTableModel
	if err := r.selectIn(ctx, &shifts, `
SELECT game_id, id, person_stats_id, shift_number, start_time, end_time,
    starting_team_score, starting_opponent_score, ending_team_score, ending_opponent_score, end_reason
FROM game_shifts
WHERE game_id IN (?)
ORDER BY game_id, person_stats_id, shift_number`, ids); err != nil {
		return nil, crerr.Wrap(err, "list game shifts")
	}

	var records []statRecordTableModel
	if err := r.selectIn(ctx, &records, `
SELECT game_id, scope, scope_id, stat_name, point_value, made, missed, tally, recorded_at
FROM stat_records
WHERE game_id IN (?)`, ids); err != nil {
		return nil, crerr.Wrap(err, "list stat records")
	}

	return assembleGames(rows, people, shifts, records), nil
}

func (r *GameRepository) selectIn(ctx context.Context, dest any, query string, ids []string) error {
	expanded, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(expanded), args...)
}

func toGameRow(g *game.Game) gameTableModel {
	return gameTableModel{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		GameDate:      storedTime(g.Date),
		Opponent:      g.Opponent,
		Location:      g.Location,
		Notes:         g.Notes,
		IsCompleted:   g.IsCompleted,
		SportID:       g.SportID,
		TeamID:        g.TeamID,
		TeamScore:     g.TeamScore,
		OpponentScore: g.OpponentScore,
		LockHolder:    g.Lock.Holder,
		LockExpiresAt: storedTimePtr(g.Lock.ExpiresAt),
		CreatedAt:     storedTime(g.CreatedAt),
		UpdatedAt:     storedTime(g.UpdatedAt),
	}
}

func toChildRows(g *game.Game) ([]gamePersonTableModel, []gameShiftTableModel, []statRecordTableModel) {
	people := make([]gamePersonTableModel, 0, len(g.People))
	shifts := make([]gameShiftTableModel, 0)
	records := toRecordRows(g.ID, scopeGame, g.ID, g.Stats, nil)

	for i, p := range g.People {
		people = append(people, gamePersonTableModel{
			GameID:     g.ID,
			ID:         p.ID,
			PersonID:   p.PersonID,
			PersonName: p.PersonName,
			SortOrder:  i,
		})
		records = toRecordRows(g.ID, scopePerson, p.ID, p.Stats, records)

		for _, s := range p.Shifts {
			shifts = append(shifts, gameShiftTableModel{
				GameID:                g.ID,
				ID:                    s.ID,
				PersonStatsID:         p.ID,
				ShiftNumber:           s.Number,
				StartTime:             storedTime(s.StartTime),
				EndTime:               storedTimePtr(s.EndTime),
				StartingTeamScore:     s.StartingTeamScore,
				StartingOpponentScore: s.StartingOpponentScore,
				EndingTeamScore:       s.EndingTeamScore,
				EndingOpponentScore:   s.EndingOpponentScore,
				EndReason:             string(s.EndReason),
			})
			records = toRecordRows(g.ID, scopeShift, s.ID, s.Stats, records)
		}
	}
	return people, shifts, records
}

func toRecordRows(gameID, scope, scopeID string, book stat.Book, out []statRecordTableModel) []statRecordTableModel {
	for _, rec := range book.Records() {
		out = append(out, statRecordTableModel{
			GameID:     gameID,
			Scope:      scope,
			ScopeID:    scopeID,
			StatName:   rec.Name,
			PointValue: rec.PointValue,
			Made:       rec.Made,
			Missed:     rec.Missed,
			Tally:      rec.Count,
			RecordedAt: storedTime(rec.Timestamp),
		})
	}
	return out
}

func assembleGames(
	rows []gameTableModel,
	people []gamePersonTableModel,
	shifts []gameShiftTableModel,
	records []statRecordTableModel,
) []*game.Game {
	type scopeKey struct {
		gameID, scope, scopeID string
	}
	books := make(map[scopeKey]stat.Book)
	for _, row := range records {
		key := scopeKey{row.GameID, row.Scope, row.ScopeID}
		if books[key] == nil {
			books[key] = stat.Book{}
		}
		books[key][row.StatName] = &stat.Record{
			Name:       row.StatName,
			PointValue: row.PointValue,
			Made:       row.Made,
			Missed:     row.Missed,
			Count:      row.Tally,
			Timestamp:  row.RecordedAt.UTC(),
		}
	}
	bookFor := func(gameID, scope, scopeID string) stat.Book {
		if b, ok := books[scopeKey{gameID, scope, scopeID}]; ok {
			return b
		}
		return stat.Book{}
	}

	type personKey struct {
		gameID, id string
	}
	shiftsByPerson := make(map[personKey][]*game.Shift)
	for _, row := range shifts {
		key := personKey{row.GameID, row.PersonStatsID}
		shiftsByPerson[key] = append(shiftsByPerson[key], &game.Shift{
			ID:                    row.ID,
			Number:                row.ShiftNumber,
			StartTime:             row.StartTime.UTC(),
			EndTime:               storedTimePtr(row.EndTime),
			StartingTeamScore:     row.StartingTeamScore,
			StartingOpponentScore: row.StartingOpponentScore,
			EndingTeamScore:       row.EndingTeamScore,
			EndingOpponentScore:   row.EndingOpponentScore,
			EndReason:             game.EndReason(row.EndReason),
			Stats:                 bookFor(row.GameID, scopeShift, row.ID),
		})
	}

	peopleByGame := make(map[string][]*game.PersonGameStats)
	for _, row := range people {
		peopleByGame[row.GameID] = append(peopleByGame[row.GameID], &game.PersonGameStats{
			ID:         row.ID,
			PersonID:   row.PersonID,
			PersonName: row.PersonName,
			Stats:      bookFor(row.GameID, scopePerson, row.ID),
			Shifts:     shiftsByPerson[personKey{row.GameID, row.ID}],
		})
	}

	out := make([]*game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, &game.Game{
			ID:            row.ID,
			OwnerID:       row.OwnerID,
			Date:          row.GameDate.UTC(),
			Opponent:      row.Opponent,
			Location:      row.Location,
			Notes:         row.Notes,
			IsCompleted:   row.IsCompleted,
			SportID:       row.SportID,
			TeamID:        row.TeamID,
			TeamScore:     row.TeamScore,
			OpponentScore: row.OpponentScore,
			Stats:         bookFor(row.ID, scopeGame, row.ID),
			People:        peopleByGame[row.ID],
			Lock:          editlock.Lease{Holder: row.LockHolder, ExpiresAt: storedTimePtr(row.LockExpiresAt)},
			CreatedAt:     row.CreatedAt.UTC(),
			UpdatedAt:     row.UpdatedAt.UTC(),
		})
	}
	return out
}
