package payment

import (
	"context"
	"time"

	"blogink/internal/domain"
	"blogink/internal/gateway/sslcommerz"

	"github.com/shopspring/decimal"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type paymentRepo interface {
	GetByTransactionID(ctx context.Context, tranID string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	ApplyTerminal(ctx context.Context, userID int64, tranID string, amount decimal.Decimal, status domain.PaymentStatus, at time.Time) (bool, error)
}

type gatewayClient interface {
	CreateSession(ctx context.Context, req sslcommerz.SessionRequest) (*sslcommerz.Session, error)
}
