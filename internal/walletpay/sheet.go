package walletpay

import (
	"context"
	"encoding/json"
)

// Status is the completion status reported back to the payment sheet after
// an authorization attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// PaymentRequest is the descriptor handed to the sheet when a session
// begins. It is a plain map so unrecognized vendor-specific options pass
// through verbatim.
type PaymentRequest map[string]interface{}

// Update carries the refreshed totals handed to a sheet completion method.
type Update struct {
	NewTotal           LineItem         `json:"newTotal"`
	NewLineItems       []LineItem       `json:"newLineItems"`
	NewShippingMethods []ShippingMethod `json:"newShippingMethods,omitempty"`
}

type ShippingMethod struct {
	Label      string `json:"label"`
	Detail     string `json:"detail,omitempty"`
	Identifier string `json:"identifier"`
	Amount     string `json:"amount"`
}

// PaymentToken is the opaque token produced by the sheet vendor on final
// user approval. The fields are forwarded, never inspected beyond presence.
type PaymentToken struct {
	PaymentData           interface{} `json:"paymentData,omitempty"`
	PaymentMethod         interface{} `json:"paymentMethod,omitempty"`
	TransactionIdentifier string      `json:"transactionIdentifier,omitempty"`
}

// Payment is the authorization result: consumed once by the token builder.
type Payment struct {
	Token           PaymentToken `json:"token"`
	BillingContact  *Contact     `json:"billingContact,omitempty"`
	ShippingContact *Contact     `json:"shippingContact,omitempty"`
}

type PaymentMethod struct {
	DisplayName    string   `json:"displayName,omitempty"`
	Network        string   `json:"network,omitempty"`
	Type           string   `json:"type,omitempty"`
	BillingContact *Contact `json:"billingContact,omitempty"`
}

// Sheet callback event payloads.
type (
	ValidateMerchantEvent struct {
		ValidationURL string `json:"validationURL"`
	}
	PaymentMethodSelectedEvent struct {
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}
	ShippingContactSelectedEvent struct {
		ShippingContact *Contact `json:"shippingContact,omitempty"`
	}
	ShippingMethodSelectedEvent struct {
		ShippingMethod *ShippingMethod `json:"shippingMethod,omitempty"`
	}
	PaymentAuthorizedEvent struct {
		Payment Payment `json:"payment"`
	}
	CancelEvent struct {
		Reason string `json:"reason,omitempty"`
	}
)

// SessionHandler receives the sheet's callback events. The session installs
// exactly one handler per sheet session, at Begin time.
type SessionHandler interface {
	OnValidateMerchant(ev ValidateMerchantEvent)
	OnPaymentMethodSelected(ev PaymentMethodSelectedEvent)
	OnShippingContactSelected(ev ShippingContactSelectedEvent)
	OnShippingMethodSelected(ev ShippingMethodSelectedEvent)
	OnPaymentAuthorized(ev PaymentAuthorizedEvent)
	OnCancel(ev CancelEvent)
}

// SheetSession is the live payment sheet. It is owned exclusively by the
// session state machine between Begin and a terminal event.
type SheetSession interface {
	SetHandler(h SessionHandler)
	Begin()
	CompleteMerchantValidation(merchantSession json.RawMessage)
	CompletePaymentMethodSelection(u Update)
	CompleteShippingContactSelection(u Update)
	CompleteShippingMethodSelection(u Update)
	CompletePayment(status Status)
}

// SheetAPI is the host-provided payment sheet capability probe and session
// factory. A nil SheetAPI means the host does not expose the vendor API.
type SheetAPI interface {
	SupportsVersion(version int) bool
	CanMakePayments() bool
	NewSession(req PaymentRequest) SheetSession
}

// Backend is the gateway transport: an async request/response function
// addressed by route. Structured error bodies surface as coded *Error
// values.
type Backend interface {
	Get(ctx context.Context, route string, data map[string]string) (json.RawMessage, error)
	Post(ctx context.Context, route string, data interface{}) (json.RawMessage, error)
}

// Loader fetches external vendor scripts and styles. Implementations must
// be idempotent when the resource is already present.
type Loader interface {
	LoadScript(ctx context.Context, url string, attrs map[string]string) error
	LoadStyle(ctx context.Context, url string, attrs map[string]string) error
}

// Frame is one open challenge/redirect frame. Exactly one result or error
// is delivered, correlated to this frame, then the frame must be closed.
type Frame interface {
	Results() <-chan json.RawMessage
	Errors() <-chan error
	Close()
}

// FrameOpener opens challenge/redirect frames over the cross-window relay.
type FrameOpener interface {
	OpenFrame(path string, payload map[string]string) (Frame, error)
}
