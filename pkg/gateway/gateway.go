// Package gateway is the payment-processor contract used for marketplace split payments.
package gateway

import "context"

type AccountParams struct {
	Country            string
	Email              string
	BusinessName       string
	MCC                string
	ProductDescription string
	SupportPhone       string
	URL                string
}

type Account struct {
	ID               string `json:"id"`
	DetailsSubmitted bool   `json:"details_submitted"`
	ChargesEnabled   bool   `json:"charges_enabled"`
}

type LineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
	Metadata   map[string]string
}

type SessionParams struct {
	ConnectedAccount string
	CustomerEmail    string
	Currency         string
	SuccessURL       string
	CancelURL        string
	LineItems        []LineItem
	ApplicationFee   int64 // minor units kept by the platform
	Metadata         map[string]string
	IdempotencyKey   string
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Gateway interface {
	CreateAccount(ctx context.Context, p AccountParams) (*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreateCheckoutSession(ctx context.Context, p SessionParams) (*Session, error)
}
