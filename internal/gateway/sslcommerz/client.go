package sslcommerz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	sandboxSessionURL = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveSessionURL    = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"
)

type Config struct {
	StoreID   string
	StorePass string
	Sandbox   bool
	// BaseURL overrides the SSLCommerz endpoint; used by tests.
	BaseURL string
	Timeout time.Duration
}

// Client is a thin call-through to the SSLCommerz session-creation API.
type Client struct {
	storeID    string
	storePass  string
	sessionURL string
	httpClient *http.Client
}

// SessionRequest carries the flat session parameters the gateway expects.
type SessionRequest struct {
	TotalAmount string
	Currency    string
	TranID      string

	SuccessURL string
	FailURL    string
	CancelURL  string
	IPNURL     string

	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	CustomerCity    string
	CustomerCountry string

	NumOfItems      int
	ProductName     string
	ProductCategory string
	ProductProfile  string
}

// Session is the successful outcome of CreateSession: the gateway accepted
// the request and returned a page to redirect the customer to.
type Session struct {
	SessionKey  string
	RedirectURL string
}

type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func NewClient(cfg Config) *Client {
	sessionURL := cfg.BaseURL
	if sessionURL == "" {
		if cfg.Sandbox {
			sessionURL = sandboxSessionURL
		} else {
			sessionURL = liveSessionURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		storeID:    cfg.StoreID,
		storePass:  cfg.StorePass,
		sessionURL: sessionURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateSession asks the gateway for a hosted payment page. A missing or
// ambiguous field in the response is treated as a failure — never a
// silently-defaulted success.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePass)
	form.Set("total_amount", req.TotalAmount)
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("emi_option", "0")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.CustomerAddress)
	form.Set("cus_city", req.CustomerCity)
	form.Set("cus_country", req.CustomerCountry)
	form.Set("shipping_method", "NO")
	form.Set("multi_card_name", "")
	form.Set("num_of_item", strconv.Itoa(req.NumOfItems))
	form.Set("product_name", req.ProductName)
	form.Set("product_category", req.ProductCategory)
	form.Set("product_profile", req.ProductProfile)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sessionURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	switch {
	case body.Status == "SUCCESS" && body.GatewayPageURL != "":
		return &Session{SessionKey: body.SessionKey, RedirectURL: body.GatewayPageURL}, nil
	case body.Status == "SUCCESS":
		return nil, fmt.Errorf("%w: success response without GatewayPageURL", ErrUnavailable)
	case body.FailedReason != "":
		return nil, fmt.Errorf("%w: %s", ErrDeclined, body.FailedReason)
	default:
		return nil, fmt.Errorf("%w: status %q with no reason", ErrDeclined, body.Status)
	}
}
