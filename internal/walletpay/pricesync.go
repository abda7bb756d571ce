package walletpay

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// LineItem is a labeled amount as presented on the payment sheet. Amounts
// are fixed two-decimal strings on the wire.
type LineItem struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// PriceSnapshot is the sheet-facing view of the pricing model at one point
// in time. The grand total is separate from the line-item list.
type PriceSnapshot struct {
	Total     LineItem
	LineItems []LineItem
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// priceSync derives sheet line items from the bound pricing model and
// serializes reprices: a second reprice for the same session waits for the
// one in flight, and a superseded snapshot is discarded for the latest.
type priceSync struct {
	pricing Pricing
	i18n    I18n

	// mu serializes reprices per session; a reprice never starts while
	// another is outstanding.
	mu sync.Mutex
}

func newPriceSync(pricing Pricing, i18n I18n) *priceSync {
	return &priceSync{pricing: pricing, i18n: i18n}
}

// snapshot derives the current totals. Presentation order is fixed:
// subtotal, discount, gift card, tax. Zero amounts are omitted.
func (s *priceSync) snapshot() PriceSnapshot {
	snap := PriceSnapshot{
		Total: LineItem{Label: s.i18n.TotalLineItemLabel, Amount: formatAmount(s.pricing.Total())},
	}

	if subtotal := s.pricing.Subtotal(); !subtotal.IsZero() {
		snap.LineItems = append(snap.LineItems, LineItem{
			Label:  s.i18n.SubtotalLineItemLabel,
			Amount: formatAmount(subtotal),
		})
	}
	if discount := s.pricing.Discount(); !discount.IsZero() {
		snap.LineItems = append(snap.LineItems, LineItem{
			Label:  s.i18n.DiscountLineItemLabel,
			Amount: formatAmount(discount.Neg()),
		})
	}
	if giftCard := s.pricing.GiftCard(); !giftCard.IsZero() {
		snap.LineItems = append(snap.LineItems, LineItem{
			Label:  s.i18n.GiftCardLineItemLabel,
			Amount: formatAmount(giftCard.Neg()),
		})
	}
	if tax := s.pricing.Tax(); !tax.IsZero() {
		snap.LineItems = append(snap.LineItems, LineItem{
			Label:  s.i18n.TaxLineItemLabel,
			Amount: formatAmount(tax),
		})
	}

	return snap
}

// repriceWithShippingAddress applies the selected contact as the model's
// shipping address and recomputes. Returns the snapshot after the latest
// recomputation; if another reprice superseded this one the fresher state
// wins.
func (s *priceSync) repriceWithShippingAddress(ctx context.Context, contact *Contact) (PriceSnapshot, error) {
	return s.reprice(ctx, func() error {
		return s.pricing.SetShippingAddress(ctx, contact.toAddress())
	})
}

func (s *priceSync) reprice(ctx context.Context, mutate func() error) (PriceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mutate != nil {
		if err := mutate(); err != nil {
			return s.snapshot(), err
		}
	}
	if err := s.pricing.Reprice(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}
