package repository

import (
	"context"
	"time"

	"blogink/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, tranID string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", tranID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// ApplyTerminal moves the payment identified by tranID into the given
// terminal status, creating the row if it does not exist yet. The insert
// runs under the transaction_id unique index with DO NOTHING on conflict,
// so of two concurrent callbacks exactly one writer wins; the loser
// re-reads and sees a terminal row. For a success status the owning
// user's subscription flag is set inside the same transaction — the
// payment row and the flag are applied together or not at all.
//
// Returns applied=false when the payment was already terminal (safe
// replay: no status change, no side effect re-run).
func (r *PaymentRepository) ApplyTerminal(ctx context.Context, userID int64, tranID string, amount decimal.Decimal, status domain.PaymentStatus, at time.Time) (bool, error) {
	var applied bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied = false
		p := domain.Payment{
			UserID:        userID,
			TransactionID: tranID,
			Amount:        amount,
			Status:        status,
			PaymentDate:   at,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).Create(&p)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Row already exists. Terminal rows absorb the callback;
			// a pending row (record-on-intent deployments) transitions
			// at most once via the guarded update below.
			var existing domain.Payment
			if err := tx.Where("transaction_id = ?", tranID).First(&existing).Error; err != nil {
				return err
			}
			if existing.Status.IsTerminal() {
				return nil
			}
			upd := tx.Model(&domain.Payment{}).
				Where("transaction_id = ? AND status = ?", tranID, domain.PaymentStatusPending).
				Updates(map[string]interface{}{
					"status":       status,
					"amount":       amount,
					"payment_date": at,
				})
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				// Lost the race to another callback that just went terminal.
				return nil
			}
		}

		applied = true
		if status == domain.PaymentStatusSuccess {
			if err := tx.Table("users").Where("id = ?", userID).
				Update("is_subscribed", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return applied, err
}
