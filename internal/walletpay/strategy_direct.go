package walletpay

import (
	"context"
	"encoding/json"
)

// directStrategy talks to the gateway backend for merchant validation and
// tokenizes with a flat payload. One instance serves every sheet API
// version; the bound version only changes capability filtering.
type directStrategy struct {
	backend Backend
	version int
}

func newDirectStrategy(deps Deps, version int) *directStrategy {
	return &directStrategy{backend: deps.Backend, version: version}
}

func (s *directStrategy) Name() string    { return "direct" }
func (s *directStrategy) APIVersion() int { return s.version }

func (s *directStrategy) Initialize(ctx context.Context) error { return nil }
func (s *directStrategy) Teardown(ctx context.Context) error   { return nil }

// ValidateMerchant exchanges the sheet's validation URL for an opaque
// merchant session via the gateway.
func (s *directStrategy) ValidateMerchant(ctx context.Context, validationURL, displayName string) (json.RawMessage, error) {
	return s.backend.Post(ctx, routeStart, map[string]string{
		"validationURL": validationURL,
		"displayName":   displayName,
	})
}

// TokenPayload merges the opaque vendor token fields with the flattened
// billing address and any non-address caller form fields. Address fields
// win over same-named form fields.
func (s *directStrategy) TokenPayload(ctx context.Context, payment *Payment, cfg *SessionConfig) (map[string]interface{}, error) {
	payload := make(map[string]interface{})
	for key, value := range cfg.Form {
		if !addressFieldNames[key] {
			payload[key] = value
		}
	}
	if payment.Token.PaymentData != nil {
		payload["paymentData"] = payment.Token.PaymentData
	}
	if payment.Token.PaymentMethod != nil {
		payload["paymentMethod"] = payment.Token.PaymentMethod
	}
	for key, value := range payment.BillingContact.addressFields() {
		payload[key] = value
	}
	return payload, nil
}
