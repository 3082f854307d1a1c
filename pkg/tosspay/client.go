package tosspay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Payment is the subset of the processor's payment object the service
// cares about.
type Payment struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"totalAmount"`
	BillingKey  string `json:"billingKey"`
	ApprovedAt  string `json:"approvedAt"`
}

// Client is the narrow interface to the payment processor's REST API.
type Client interface {
	// ApprovePayment exchanges a short-lived payment key from the
	// hosted checkout redirect for a final approval.
	ApprovePayment(ctx context.Context, paymentKey, orderID string, amount int64) (*Payment, error)

	// ChargeWithBillingKey charges a stored billing credential.
	ChargeWithBillingKey(ctx context.Context, billingKey, customerKey string, amount int64, orderID, orderName string) (*Payment, error)

	// DeleteBillingKey removes a stored billing credential.
	DeleteBillingKey(ctx context.Context, billingKey, customerKey string) error
}

type client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string) Client {
	return &client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// The processor authenticates with Basic auth over "secret:".
func (c *client) authHeader() string {
	encoded := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	return "Basic " + encoded
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("tosspay %s %s: %s (%s)", method, path, apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("tosspay %s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (c *client) ApprovePayment(ctx context.Context, paymentKey, orderID string, amount int64) (*Payment, error) {
	var payment Payment
	err := c.do(ctx, http.MethodPost, "/payments/confirm", map[string]interface{}{
		"paymentKey": paymentKey,
		"orderId":    orderID,
		"amount":     amount,
	}, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *client) ChargeWithBillingKey(ctx context.Context, billingKey, customerKey string, amount int64, orderID, orderName string) (*Payment, error) {
	var payment Payment
	err := c.do(ctx, http.MethodPost, "/billing/"+url.PathEscape(billingKey), map[string]interface{}{
		"customerKey": customerKey,
		"amount":      amount,
		"orderId":     orderID,
		"orderName":   orderName,
	}, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *client) DeleteBillingKey(ctx context.Context, billingKey, customerKey string) error {
	path := fmt.Sprintf("/billing/%s?customerKey=%s", url.PathEscape(billingKey), url.QueryEscape(customerKey))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
