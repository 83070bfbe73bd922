package records

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	recordsdomain "pet-diary/internal/domain/records"
)

// BeginBatch reserves the idempotency key. When the key is taken it returns
// the existing record, or nil if that record vanished in between.
func (r *PostgresRepository) BeginBatch(ctx context.Context, batch *recordsdomain.BatchRecord) (bool, *recordsdomain.BatchRecord, error) {
	err := r.db.WithContext(ctx).Create(batch).Error
	if err == nil {
		return true, nil, nil
	}
	if !isUniqueViolation(err) {
		return false, nil, err
	}

	var existing recordsdomain.BatchRecord
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND idempotency_key = ?", batch.OwnerID, batch.IdempotencyKey).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return false, &existing, nil
}

func (r *PostgresRepository) CompleteBatch(ctx context.Context, batchID string, status recordsdomain.BatchState, responseJSON []byte) error {
	return r.db.WithContext(ctx).
		Model(&recordsdomain.BatchRecord{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"status":        status,
			"response_json": responseJSON,
		}).Error
}

func (r *PostgresRepository) AbandonBatch(ctx context.Context, batchID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND status = ?", batchID, recordsdomain.BatchStateProcessing).
		Delete(&recordsdomain.BatchRecord{}).Error
}

func (r *PostgresRepository) PurgeBatches(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Delete(&recordsdomain.BatchRecord{})
	return result.RowsAffected, result.Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
