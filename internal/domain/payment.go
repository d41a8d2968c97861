package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is applied for this status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// Payment is one payment attempt. The transaction id embeds the owning
// user's id as a prefix ("{user_id}_{hex}") so gateway callbacks can be
// correlated without a session. Rows are audit records and never deleted.
type Payment struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	UserID        int64           `gorm:"index;not null" json:"user"`
	TransactionID string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        PaymentStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentDate   time.Time       `json:"payment_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
