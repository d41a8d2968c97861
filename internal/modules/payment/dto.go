package payment

import "github.com/shopspring/decimal"

type InitiatePaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required" example:"500.00"`
	NumItems int             `json:"num_items" example:"1"`
}

type InitiatePaymentResponse struct {
	PaymentURL    string `json:"payment_url" example:"https://sandbox.sslcommerz.com/gwprocess/pay/abc"`
	TransactionID string `json:"transaction_id" example:"7_3f2c9a1b64d84e50b1a2c3d4e5f60718"`
}

// CallbackRequest is what the gateway sends to the success/fail/cancel
// and IPN endpoints, form-encoded or JSON.
type CallbackRequest struct {
	TranID string `form:"tran_id" json:"tran_id"`
	Amount string `form:"amount" json:"amount"`
	Status string `form:"status" json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"invalid request"`
}
