package subscription

import "context"

// Provider creates PIX charges at the payment gateway.
type Provider interface {
	// Ready returns an error when credentials are missing.
	Ready() error

	// CreatePixCharge opens a charge for the amount in minor units.
	CreatePixCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// ChargeRequest is what the service asks the provider to charge.
type ChargeRequest struct {
	UserID string
	PlanID string
	Amount int64 // minor units
}

// Charge is the payable representation returned to the client.
type Charge struct {
	TransactionID string `json:"transactionId"`
	PixCode       string `json:"pixCode"`
	PixCodeBase64 string `json:"pixCodeBase64"` // PNG data URI or raw base64 from the provider
	Status        string `json:"status"`
}

// QRRenderer turns a PIX copy-and-paste code into an image payload.
type QRRenderer func(pixCode string) (string, error)

// Notification is the normalized inbound webhook payload.
type Notification struct {
	TransactionID string `json:"id"`
	Status        string `json:"status"`
}
