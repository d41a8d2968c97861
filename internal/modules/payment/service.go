package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogink/internal/domain"
	"blogink/internal/gateway/sslcommerz"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const currency = "BDT"

// CallbackKind is the outcome reported by a gateway callback.
type CallbackKind string

const (
	CallbackSuccess CallbackKind = "success"
	CallbackFail    CallbackKind = "fail"
	CallbackCancel  CallbackKind = "cancel"
)

func (k CallbackKind) status() domain.PaymentStatus {
	switch k {
	case CallbackSuccess:
		return domain.PaymentStatusSuccess
	case CallbackCancel:
		return domain.PaymentStatusCancelled
	default:
		return domain.PaymentStatusFailed
	}
}

// Service is the payment lifecycle controller: it creates payment intents,
// correlates asynchronous gateway callbacks back to the owning user and
// applies terminal state transitions exactly once.
//
// Nothing is persisted at intent time; the Payment row materializes when
// the first callback for its transaction id arrives (the id alone carries
// enough to construct the record). The transaction_id unique index is the
// sole idempotency guard.
type Service struct {
	users    userReader
	payments paymentRepo
	gateway  gatewayClient
	loggerf  func(format string, args ...interface{})

	backendBaseURL string
}

func NewService(users userReader, payments paymentRepo, gateway gatewayClient, backendBaseURL string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		users:          users,
		payments:       payments,
		gateway:        gateway,
		loggerf:        loggerf,
		backendBaseURL: backendBaseURL,
	}
}

// InitiatePayment builds a gateway session for the authenticated user and
// returns the hosted page URL to redirect them to.
func (s *Service) InitiatePayment(ctx context.Context, userID int64, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	tranID := NewTransactionID(user.ID)
	numItems := req.NumItems
	if numItems <= 0 {
		numItems = 1
	}

	// Contact fields default to empty, never block an intent.
	session, err := s.gateway.CreateSession(ctx, sslcommerz.SessionRequest{
		TotalAmount:     req.Amount.StringFixed(2),
		Currency:        currency,
		TranID:          tranID,
		SuccessURL:      s.backendBaseURL + "/api/v1/payment/success",
		FailURL:         s.backendBaseURL + "/api/v1/payment/fail",
		CancelURL:       s.backendBaseURL + "/api/v1/payment/cancel",
		IPNURL:          s.backendBaseURL + "/api/v1/payment/ipn",
		CustomerName:    user.FullName,
		CustomerEmail:   user.Email,
		CustomerPhone:   user.Phone,
		CustomerAddress: user.Address,
		CustomerCity:    "Dhaka",
		CustomerCountry: "Bangladesh",
		NumOfItems:      numItems,
		ProductName:     "blog subscription",
		ProductCategory: "Subscription",
		ProductProfile:  "general",
	})
	if err != nil {
		if errors.Is(err, sslcommerz.ErrDeclined) {
			s.loggerf("level=info msg=gateway declined intent user_id=%d tran_id=%s err=%v", userID, tranID, err)
			return nil, fmt.Errorf("%w: %v", ErrGatewayDeclined, err)
		}
		s.loggerf("level=error msg=gateway call failed user_id=%d tran_id=%s err=%v", userID, tranID, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	s.loggerf("level=info msg=payment intent created user_id=%d tran_id=%s amount=%s", userID, tranID, req.Amount.StringFixed(2))
	return &InitiatePaymentResponse{PaymentURL: session.RedirectURL, TransactionID: tranID}, nil
}

// HandleCallback correlates a gateway callback to its user and applies the
// terminal transition. Replays and late callbacks of a different kind are
// no-ops: once a payment is terminal it never changes again, and the
// subscription grant runs at most once.
func (s *Service) HandleCallback(ctx context.Context, kind CallbackKind, tranID string, amount decimal.Decimal) (bool, error) {
	userID, err := SplitTransactionID(tranID)
	if err != nil {
		return false, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=error msg=callback for unknown user tran_id=%s user_id=%d", tranID, userID)
			return false, ErrUnknownUser
		}
		return false, err
	}

	applied, err := s.payments.ApplyTerminal(ctx, user.ID, tranID, amount, kind.status(), time.Now().UTC())
	if err != nil {
		s.loggerf("level=error msg=failed to apply callback kind=%s tran_id=%s err=%v", kind, tranID, err)
		return false, err
	}
	if !applied {
		s.loggerf("level=info msg=idempotent callback payment already terminal kind=%s tran_id=%s", kind, tranID)
		return false, nil
	}

	s.loggerf("level=info msg=callback applied kind=%s tran_id=%s user_id=%d amount=%s", kind, tranID, user.ID, amount.StringFixed(2))
	return true, nil
}

// GetByTransactionID returns a single payment, visible to its owner or staff.
func (s *Service) GetByTransactionID(ctx context.Context, tranID string, requesterID int64, requesterIsStaff bool) (*domain.Payment, error) {
	p, err := s.payments.GetByTransactionID(ctx, tranID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.UserID != requesterID && !requesterIsStaff {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return s.payments.ListAll(ctx)
}
