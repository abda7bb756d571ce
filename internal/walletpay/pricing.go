package walletpay

import (
	"context"

	"github.com/shopspring/decimal"
)

// Pricing is the reactive pricing model collaborator. It may be shared with
// other consumers (a checkout summary view, for instance), so the session
// never assumes exclusive write access: whatever it mutates during an
// abandoned session it must restore.
//
// Amount accessors are synchronous reads of the current state. Discount and
// GiftCard return positive magnitudes. Reprice recomputes backend-dependent
// amounts (taxes, shipping) and resolves once the model is consistent again;
// change listeners fire after every recomputation.
type Pricing interface {
	HasPrice() bool
	Total() decimal.Decimal
	Subtotal() decimal.Decimal
	Discount() decimal.Decimal
	GiftCard() decimal.Decimal
	Tax() decimal.Decimal

	Address() *Address
	ShippingAddress() *Address
	SetAddress(ctx context.Context, a *Address) error
	SetShippingAddress(ctx context.Context, a *Address) error

	Reprice(ctx context.Context) error
	OnChange(fn func())
}
