package payment

import (
	"errors"
	"net/http"
	"strings"

	"blogink/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})

	frontendBaseURL string
}

func NewHandler(service *Service, frontendBaseURL string, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf, frontendBaseURL: frontendBaseURL}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payment/initiate", h.Initiate)
	rg.GET("/payment/my-payments", h.MyPayments)
	rg.GET("/payment/:transaction_id", h.GetByTransactionID)
}

func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.GET("/payment", h.ListAll)
}

// Callback routes are called by the gateway, not by our users; they stay
// unauthenticated and answer with redirects (browser-facing) or a JSON
// acknowledgment (IPN, server-to-server).
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payment/success", h.SuccessCallback)
	rg.POST("/payment/fail", h.FailCallback)
	rg.POST("/payment/cancel", h.CancelCallback)
	rg.POST("/payment/ipn", h.IPNCallback)
}

// Initiate godoc
// @Summary      Initiate a subscription payment
// @Description  Creates a gateway session and returns the hosted payment page URL
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body InitiatePaymentRequest true "Payment intent payload"
// @Success      200 {object} InitiatePaymentResponse
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /payment/initiate [post]
func (h *Handler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	resp, err := h.service.InitiatePayment(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
		case errors.Is(err, ErrUnknownUser):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown user")
		case errors.Is(err, ErrGatewayDeclined):
			response.Error(c, http.StatusBadRequest, "GATEWAY_DECLINED", err.Error())
		case errors.Is(err, ErrGatewayUnavailable):
			response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment gateway is unavailable, try again later")
		default:
			h.loggerf("level=error msg=initiate payment failed user_id=%d err=%v", c.GetInt64("user_id"), err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Payment initiation failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_url": resp.PaymentURL, "transaction_id": resp.TransactionID})
}

func (h *Handler) SuccessCallback(c *gin.Context) {
	h.handleBrowserCallback(c, CallbackSuccess)
}

func (h *Handler) FailCallback(c *gin.Context) {
	h.handleBrowserCallback(c, CallbackFail)
}

func (h *Handler) CancelCallback(c *gin.Context) {
	h.handleBrowserCallback(c, CallbackCancel)
}

func (h *Handler) handleBrowserCallback(c *gin.Context, kind CallbackKind) {
	req, ok := h.bindCallback(c)
	if !ok {
		return
	}

	_, err := h.service.HandleCallback(c.Request.Context(), kind, req.TranID, parseAmount(req.Amount))
	if err != nil {
		h.respondCallbackError(c, kind, req.TranID, err)
		return
	}

	c.Redirect(http.StatusFound, h.frontendBaseURL+"/payment/"+string(kind))
}

// IPNCallback handles the server-to-server notification. The reported
// status field picks the transition; the answer is a JSON acknowledgment,
// never a redirect.
func (h *Handler) IPNCallback(c *gin.Context) {
	req, ok := h.bindCallback(c)
	if !ok {
		return
	}

	var kind CallbackKind
	switch strings.ToUpper(strings.TrimSpace(req.Status)) {
	case "VALID", "VALIDATED", "SUCCESS":
		kind = CallbackSuccess
	case "FAILED":
		kind = CallbackFail
	case "CANCELLED", "CANCELED":
		kind = CallbackCancel
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	applied, err := h.service.HandleCallback(c.Request.Context(), kind, req.TranID, parseAmount(req.Amount))
	if err != nil {
		h.respondCallbackError(c, kind, req.TranID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "applied": applied})
}

func (h *Handler) bindCallback(c *gin.Context) (CallbackRequest, bool) {
	var req CallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed callback body"})
		return req, false
	}
	return req, true
}

func (h *Handler) respondCallbackError(c *gin.Context, kind CallbackKind, tranID string, err error) {
	switch {
	case errors.Is(err, ErrBadTransactionID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnknownUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.loggerf("level=error msg=callback handling failed kind=%s tran_id=%s err=%v", kind, tranID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment update failed for transaction id: " + tranID})
	}
}

// parseAmount tolerates a missing or junk amount by falling back to zero;
// the callback is still acknowledged (matches upstream gateway behavior).
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// GetByTransactionID godoc
// @Summary      Get one payment by transaction id
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} domain.Payment
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payment/{transaction_id} [get]
func (h *Handler) GetByTransactionID(c *gin.Context) {
	p, err := h.service.GetByTransactionID(
		c.Request.Context(),
		c.Param("transaction_id"),
		c.GetInt64("user_id"),
		c.GetBool("is_staff"),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this payment")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Payment lookup failed")
		}
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) MyPayments(c *gin.Context) {
	payments, err := h.service.ListByUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Payment list failed")
		return
	}
	response.Success(c, http.StatusOK, payments)
}

func (h *Handler) ListAll(c *gin.Context) {
	payments, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Payment list failed")
		return
	}
	response.Success(c, http.StatusOK, payments)
}
