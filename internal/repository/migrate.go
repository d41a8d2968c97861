package repository

import (
	"blogink/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates/updates the tables the repositories read and write.
// The payments.transaction_id unique index declared on the model is the
// idempotency guard for callback handling — it must exist.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &domain.Payment{})
}
