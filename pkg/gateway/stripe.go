package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultStripeURL = "https://api.stripe.com"

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeClient talks to the Stripe REST API (form-encoded, Stripe-Account header for connected accounts).
type StripeClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewStripeClient(baseURL, secretKey string, logger *zap.Logger) *StripeClient {
	if baseURL == "" {
		baseURL = DefaultStripeURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetBasicAuth(secretKey, "").
		SetHeader("Accept", "application/json")

	return &StripeClient{httpClient: client, logger: logger}
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, account, idemKey string, out any) error {
	var apiErr stripeError
	req := c.httpClient.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(out).
		SetError(&apiErr)
	if account != "" {
		req.SetHeader("Stripe-Account", account)
	}
	if idemKey != "" {
		req.SetHeader("Idempotency-Key", idemKey)
	}

	res, err := req.Post(path)
	if err != nil {
		c.logger.Error("stripe call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("stripe %s: %w", path, err)
	}
	if res.IsError() {
		c.logger.Error("stripe returned error",
			zap.String("path", path),
			zap.Int("status_code", res.StatusCode()),
			zap.String("type", apiErr.Error.Type),
			zap.String("msg", apiErr.Error.Message),
		)
		return fmt.Errorf("stripe %s: %s (status: %d)", path, apiErr.Error.Message, res.StatusCode())
	}
	return nil
}

func (c *StripeClient) CreateAccount(ctx context.Context, p AccountParams) (*Account, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("country", p.Country)
	form.Set("email", p.Email)
	form.Set("business_type", "individual")
	form.Set("capabilities[card_payments][requested]", "true")
	form.Set("capabilities[transfers][requested]", "true")
	form.Set("business_profile[name]", p.BusinessName)
	form.Set("business_profile[mcc]", p.MCC)
	form.Set("business_profile[product_description]", p.ProductDescription)
	if p.SupportPhone != "" {
		form.Set("business_profile[support_phone]", p.SupportPhone)
	}
	if p.URL != "" {
		form.Set("business_profile[url]", p.URL)
	}
	form.Set("settings[payouts][schedule][interval]", "daily")

	var acct Account
	if err := c.post(ctx, "/v1/accounts", form, "", "", &acct); err != nil {
		return nil, err
	}
	c.logger.Info("stripe account created", zap.String("account_id", acct.ID))
	return &acct, nil
}

func (c *StripeClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var acct Account
	var apiErr stripeError
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetResult(&acct).
		SetError(&apiErr).
		Get("/v1/accounts/{id}")
	if err != nil {
		return nil, fmt.Errorf("stripe get account: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("stripe get account: %s (status: %d)", apiErr.Error.Message, res.StatusCode())
	}
	return &acct, nil
}

func (c *StripeClient) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("refresh_url", refreshURL)
	form.Set("return_url", returnURL)
	form.Set("type", "account_onboarding")

	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/v1/account_links", form, "", "", &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("stripe account link: empty url")
	}
	return out.URL, nil
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p SessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	if p.CustomerEmail != "" {
		form.Set("customer_email", p.CustomerEmail)
	}
	form.Set("invoice_creation[enabled]", "true")
	form.Set("payment_intent_data[application_fee_amount]", strconv.FormatInt(p.ApplicationFee, 10))
	for k, v := range p.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	for i, li := range p.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.FormatInt(li.Quantity, 10))
		form.Set(prefix+"[price_data][currency]", p.Currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(li.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", li.Name)
		for k, v := range li.Metadata {
			form.Set(prefix+"[price_data][product_data][metadata]["+k+"]", v)
		}
	}

	var s Session
	if err := c.post(ctx, "/v1/checkout/sessions", form, p.ConnectedAccount, p.IdempotencyKey, &s); err != nil {
		return nil, err
	}
	if s.URL == "" {
		return nil, fmt.Errorf("stripe checkout session: empty url")
	}
	return &s, nil
}
