package repository

import (
	"context"
	"testing"
	"time"

	"blogink/internal/database"
	"blogink/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaymentRepoTest(t *testing.T) (*PaymentRepository, *UserRepository) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return NewPaymentRepository(db), NewUserRepository(db)
}

func seedUser(t *testing.T, users *UserRepository) *domain.User {
	t.Helper()
	u := &domain.User{Email: "u@example.com", PasswordHash: "x", FullName: "U"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestApplyTerminal_CreatesSuccessAndGrantsSubscription(t *testing.T) {
	payments, users := setupPaymentRepoTest(t)
	u := seedUser(t, users)
	ctx := context.Background()
	amount := decimal.RequireFromString("500.00")

	applied, err := payments.ApplyTerminal(ctx, u.ID, "1_aaa", amount, domain.PaymentStatusSuccess, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, applied)

	p, err := payments.GetByTransactionID(ctx, "1_aaa")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, p.Status)
	assert.True(t, p.Amount.Equal(amount))
	assert.Equal(t, u.ID, p.UserID)

	fresh, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, fresh.IsSubscribed)
}

func TestApplyTerminal_ReplayIsNoOp(t *testing.T) {
	payments, users := setupPaymentRepoTest(t)
	u := seedUser(t, users)
	ctx := context.Background()
	amount := decimal.NewFromInt(500)

	applied, err := payments.ApplyTerminal(ctx, u.ID, "1_bbb", amount, domain.PaymentStatusSuccess, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = payments.ApplyTerminal(ctx, u.ID, "1_bbb", amount, domain.PaymentStatusSuccess, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, applied, "duplicate callback must not re-apply")

	list, err := payments.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "exactly one payment row per transaction id")
}

func TestApplyTerminal_TerminalStateIsForever(t *testing.T) {
	payments, users := setupPaymentRepoTest(t)
	u := seedUser(t, users)
	ctx := context.Background()

	applied, err := payments.ApplyTerminal(ctx, u.ID, "1_ccc", decimal.Zero, domain.PaymentStatusCancelled, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = payments.ApplyTerminal(ctx, u.ID, "1_ccc", decimal.NewFromInt(500), domain.PaymentStatusSuccess, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, applied)

	p, err := payments.GetByTransactionID(ctx, "1_ccc")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCancelled, p.Status, "terminal status must not regress")

	fresh, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, fresh.IsSubscribed, "cancel path must not grant subscription")
}

func TestApplyTerminal_PendingRowTransitionsOnce(t *testing.T) {
	payments, users := setupPaymentRepoTest(t)
	u := seedUser(t, users)
	ctx := context.Background()

	// record-on-intent deployments leave a pending row behind
	db := payments.db
	require.NoError(t, db.Create(&domain.Payment{
		UserID:        u.ID,
		TransactionID: "1_ddd",
		Amount:        decimal.NewFromInt(500),
		Status:        domain.PaymentStatusPending,
		PaymentDate:   time.Now().UTC(),
	}).Error)

	applied, err := payments.ApplyTerminal(ctx, u.ID, "1_ddd", decimal.NewFromInt(500), domain.PaymentStatusSuccess, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, applied)

	p, err := payments.GetByTransactionID(ctx, "1_ddd")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, p.Status)

	applied, err = payments.ApplyTerminal(ctx, u.ID, "1_ddd", decimal.NewFromInt(500), domain.PaymentStatusFailed, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, applied)
}
