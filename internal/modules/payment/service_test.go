package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogink/internal/domain"
	"blogink/internal/gateway/sslcommerz"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type mockUserReader struct {
	users map[int64]*domain.User
}

func (m *mockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type mockPaymentRepo struct {
	byTranID       map[string]*domain.Payment
	subscribeCalls map[int64]int
	applyCalls     int
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{
		byTranID:       map[string]*domain.Payment{},
		subscribeCalls: map[int64]int{},
	}
}

func (m *mockPaymentRepo) GetByTransactionID(ctx context.Context, tranID string) (*domain.Payment, error) {
	p, ok := m.byTranID[tranID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range m.byTranID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) ListAll(ctx context.Context) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range m.byTranID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPaymentRepo) ApplyTerminal(ctx context.Context, userID int64, tranID string, amount decimal.Decimal, status domain.PaymentStatus, at time.Time) (bool, error) {
	m.applyCalls++
	if existing, ok := m.byTranID[tranID]; ok && existing.Status.IsTerminal() {
		return false, nil
	}
	m.byTranID[tranID] = &domain.Payment{
		UserID:        userID,
		TransactionID: tranID,
		Amount:        amount,
		Status:        status,
		PaymentDate:   at,
	}
	if status == domain.PaymentStatusSuccess {
		m.subscribeCalls[userID]++
	}
	return true, nil
}

type mockGateway struct {
	session *sslcommerz.Session
	err     error
	lastReq sslcommerz.SessionRequest
	calls   int
}

func (m *mockGateway) CreateSession(ctx context.Context, req sslcommerz.SessionRequest) (*sslcommerz.Session, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func newTestService(users *mockUserReader, repo *mockPaymentRepo, gw *mockGateway) *Service {
	return NewService(users, repo, gw, "http://backend.test", func(string, ...interface{}) {})
}

func user7() *mockUserReader {
	return &mockUserReader{users: map[int64]*domain.User{
		7: {ID: 7, Email: "u7@example.com", FullName: "User Seven", Phone: "+880170", Address: "Dhaka"},
	}}
}

func TestInitiatePayment_RejectsNonPositiveAmount(t *testing.T) {
	repo := newMockPaymentRepo()
	gw := &mockGateway{}
	svc := newTestService(user7(), repo, gw)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.InitiatePayment(context.Background(), 7, InitiatePaymentRequest{Amount: amount})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called for invalid amounts")
	}
	if repo.applyCalls != 0 {
		t.Fatalf("no record may be created for invalid amounts")
	}
}

func TestInitiatePayment_ReturnsGatewayURL(t *testing.T) {
	repo := newMockPaymentRepo()
	gw := &mockGateway{session: &sslcommerz.Session{RedirectURL: "https://gw/pay/abc"}}
	svc := newTestService(user7(), repo, gw)

	resp, err := svc.InitiatePayment(context.Background(), 7, InitiatePaymentRequest{Amount: decimal.NewFromInt(500)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PaymentURL != "https://gw/pay/abc" {
		t.Fatalf("expected gateway page url, got %q", resp.PaymentURL)
	}
	if uid, err := SplitTransactionID(resp.TransactionID); err != nil || uid != 7 {
		t.Fatalf("transaction id %q must embed user id 7", resp.TransactionID)
	}
	if gw.lastReq.TotalAmount != "500.00" || gw.lastReq.Currency != "BDT" {
		t.Fatalf("unexpected session request amount=%q currency=%q", gw.lastReq.TotalAmount, gw.lastReq.Currency)
	}
	if gw.lastReq.IPNURL != "http://backend.test/api/v1/payment/ipn" {
		t.Fatalf("unexpected ipn url %q", gw.lastReq.IPNURL)
	}
	// record-on-callback: nothing persisted at intent time
	if repo.applyCalls != 0 || len(repo.byTranID) != 0 {
		t.Fatalf("no Payment may be persisted at intent time")
	}
}

func TestInitiatePayment_GatewayErrorMapping(t *testing.T) {
	repo := newMockPaymentRepo()

	gw := &mockGateway{err: sslcommerz.ErrDeclined}
	_, err := newTestService(user7(), repo, gw).InitiatePayment(context.Background(), 7, InitiatePaymentRequest{Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrGatewayDeclined) {
		t.Fatalf("expected ErrGatewayDeclined, got %v", err)
	}

	gw = &mockGateway{err: sslcommerz.ErrUnavailable}
	_, err = newTestService(user7(), repo, gw).InitiatePayment(context.Background(), 7, InitiatePaymentRequest{Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestHandleCallback_SuccessAppliesOnce(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newTestService(user7(), repo, &mockGateway{})
	tranID := NewTransactionID(7)
	amount := decimal.NewFromInt(500)

	applied, err := svc.HandleCallback(context.Background(), CallbackSuccess, tranID, amount)
	if err != nil || !applied {
		t.Fatalf("first callback: applied=%v err=%v", applied, err)
	}

	applied, err = svc.HandleCallback(context.Background(), CallbackSuccess, tranID, amount)
	if err != nil {
		t.Fatalf("replay must not error: %v", err)
	}
	if applied {
		t.Fatalf("replay must be a no-op")
	}

	if repo.subscribeCalls[7] != 1 {
		t.Fatalf("subscription must be granted exactly once, got %d", repo.subscribeCalls[7])
	}
	p := repo.byTranID[tranID]
	if p == nil || p.Status != domain.PaymentStatusSuccess || !p.Amount.Equal(amount) {
		t.Fatalf("unexpected payment record: %+v", p)
	}
}

func TestHandleCallback_NoCrossStateRegression(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newTestService(user7(), repo, &mockGateway{})
	tranID := NewTransactionID(7)

	applied, err := svc.HandleCallback(context.Background(), CallbackCancel, tranID, decimal.Zero)
	if err != nil || !applied {
		t.Fatalf("cancel: applied=%v err=%v", applied, err)
	}

	applied, err = svc.HandleCallback(context.Background(), CallbackSuccess, tranID, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("late success must not error: %v", err)
	}
	if applied {
		t.Fatalf("terminal payment must not transition again")
	}
	if repo.byTranID[tranID].Status != domain.PaymentStatusCancelled {
		t.Fatalf("status regressed to %s", repo.byTranID[tranID].Status)
	}
	if repo.subscribeCalls[7] != 0 {
		t.Fatalf("subscription must not be granted after cancel")
	}
}

func TestHandleCallback_UnknownUser(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newTestService(user7(), repo, &mockGateway{})

	_, err := svc.HandleCallback(context.Background(), CallbackSuccess, "999999_deadbeefdeadbeefdeadbeefdeadbeef", decimal.NewFromInt(500))
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
	if len(repo.byTranID) != 0 {
		t.Fatalf("no Payment may be created for an unknown user")
	}
}

func TestHandleCallback_BadTransactionID(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newTestService(user7(), repo, &mockGateway{})

	for _, tranID := range []string{"", "garbage", "abc_def"} {
		_, err := svc.HandleCallback(context.Background(), CallbackFail, tranID, decimal.Zero)
		if !errors.Is(err, ErrBadTransactionID) {
			t.Fatalf("tran id %q: expected ErrBadTransactionID, got %v", tranID, err)
		}
	}
}

func TestGetByTransactionID_OwnerOrStaff(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newTestService(user7(), repo, &mockGateway{})
	tranID := NewTransactionID(7)
	if _, err := svc.HandleCallback(context.Background(), CallbackSuccess, tranID, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := svc.GetByTransactionID(context.Background(), tranID, 7, false); err != nil {
		t.Fatalf("owner must see own payment: %v", err)
	}
	if _, err := svc.GetByTransactionID(context.Background(), tranID, 8, true); err != nil {
		t.Fatalf("staff must see any payment: %v", err)
	}
	if _, err := svc.GetByTransactionID(context.Background(), tranID, 8, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger must get ErrForbidden, got %v", err)
	}
	if _, err := svc.GetByTransactionID(context.Background(), "7_unknown", 7, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
