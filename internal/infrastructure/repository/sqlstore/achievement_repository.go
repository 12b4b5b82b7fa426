package sqlstore

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/statline/internal/domain/achievement"
)

type AchievementRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db, now: time.Now}
}

// GetLedger returns an empty ledger for users with no stored row.
func (r *AchievementRepository) GetLedger(ctx context.Context, userID string) (*achievement.Ledger, error) {
	var ledgerRow achievementLedgerTableModel
	query := r.db.Rebind(`SELECT user_id, total_points, updated_at FROM achievement_ledgers WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &ledgerRow, query, userID); err != nil {
		if isNotFound(err) {
			return achievement.NewLedger(userID), nil
		}
		return nil, crerr.Wrapf(err, "get achievement ledger user=%s", userID)
	}

	var unlockRows []achievementUnlockTableModel
	unlockQuery := r.db.Rebind(`
SELECT user_id, achievement_id, unlocked_at
FROM achievement_unlocks
WHERE user_id = ?
ORDER BY unlocked_at, achievement_id`)
	if err := r.db.SelectContext(ctx, &unlockRows, unlockQuery, userID); err != nil {
		return nil, crerr.Wrapf(err, "list achievement unlocks user=%s", userID)
	}

	ledger := achievement.NewLedger(userID)
	ledger.TotalPoints = ledgerRow.TotalPoints
	for _, row := range unlockRows {
		ledger.Unlocked[row.AchievementID] = row.UnlockedAt.UTC()
	}
	return ledger, nil
}

// SaveLedger upserts the tally and inserts unlocks not stored yet. Unlocks are
// never removed.
func (r *AchievementRepository) SaveLedger(ctx context.Context, ledger *achievement.Ledger) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx for achievement ledger save")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertLedgerQuery = `
INSERT INTO achievement_ledgers (user_id, total_points, updated_at)
VALUES (:user_id, :total_points, :updated_at)
ON CONFLICT (user_id) DO UPDATE SET
    total_points = EXCLUDED.total_points,
    updated_at = EXCLUDED.updated_at`
	if err := namedExec(ctx, tx, upsertLedgerQuery, achievementLedgerTableModel{
		UserID:      ledger.UserID,
		TotalPoints: ledger.TotalPoints,
		UpdatedAt:   storedTime(r.now()),
	}); err != nil {
		return crerr.Wrapf(err, "upsert achievement ledger user=%s", ledger.UserID)
	}

	const insertUnlockQuery = `
INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked_at)
VALUES (:user_id, :achievement_id, :unlocked_at)
ON CONFLICT (user_id, achievement_id) DO NOTHING`
	for id, at := range ledger.Unlocked {
		if err := namedExec(ctx, tx, insertUnlockQuery, achievementUnlockTableModel{
			UserID:        ledger.UserID,
			AchievementID: id,
			UnlockedAt:    storedTime(at),
		}); err != nil {
			return crerr.Wrapf(err, "insert achievement unlock user=%s id=%s", ledger.UserID, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit achievement ledger tx")
	}
	return nil
}
