package pricing

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"walletpay-backend/internal/walletpay"
)

// Checkout is an in-process pricing model: a subtotal built from item
// amounts, a percentage or fixed coupon, an applied gift card balance, and
// a destination-dependent tax rate. It recomputes on demand and notifies
// change listeners after every recomputation.
type Checkout struct {
	mu sync.Mutex

	items    []decimal.Decimal
	coupon   *Coupon
	giftCard decimal.Decimal

	// taxRates maps an upper-case country code to a fractional rate,
	// e.g. "US": 0.0875. Tax applies to the shipping destination when one
	// is set, otherwise to the billing address.
	taxRates map[string]decimal.Decimal

	address         *walletpay.Address
	shippingAddress *walletpay.Address

	subtotal decimal.Decimal
	discount decimal.Decimal
	applied  decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
	priced   bool

	listeners []func()
}

// Coupon reduces the subtotal either by a percentage or by a fixed amount,
// whichever is set. Percent is fractional: 0.10 is ten percent.
type Coupon struct {
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

var _ walletpay.Pricing = (*Checkout)(nil)

// NewCheckout builds a checkout over the given item amounts.
func NewCheckout(items ...decimal.Decimal) *Checkout {
	return &Checkout{
		items:    items,
		taxRates: make(map[string]decimal.Decimal),
	}
}

// SetCoupon attaches or clears the coupon. Takes effect on the next reprice.
func (c *Checkout) SetCoupon(coupon *Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupon = coupon
}

// SetGiftCard sets the gift card balance available to this checkout.
func (c *Checkout) SetGiftCard(balance decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.giftCard = balance
}

// SetTaxRate registers the fractional tax rate for a country.
func (c *Checkout) SetTaxRate(country string, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxRates[strings.ToUpper(strings.TrimSpace(country))] = rate
}

func (c *Checkout) HasPrice() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.priced
}

func (c *Checkout) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Checkout) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal
}

// Discount is the positive magnitude the coupon takes off the subtotal.
func (c *Checkout) Discount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount
}

// GiftCard is the positive magnitude actually applied, capped at the
// amount still owed.
func (c *Checkout) GiftCard() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

func (c *Checkout) Tax() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tax
}

func (c *Checkout) Address() *walletpay.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

func (c *Checkout) ShippingAddress() *walletpay.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shippingAddress
}

func (c *Checkout) SetAddress(ctx context.Context, a *walletpay.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.address = a
	return nil
}

func (c *Checkout) SetShippingAddress(ctx context.Context, a *walletpay.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shippingAddress = a
	return nil
}

// Reprice recomputes subtotal, discount, gift card application, tax, and
// total from the current inputs, then notifies change listeners.
func (c *Checkout) Reprice(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()

	subtotal := decimal.Zero
	for _, amount := range c.items {
		subtotal = subtotal.Add(amount)
	}

	discount := decimal.Zero
	if c.coupon != nil {
		if !c.coupon.Percent.IsZero() {
			discount = subtotal.Mul(c.coupon.Percent).Round(2)
		} else {
			discount = c.coupon.Amount
		}
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(c.taxRate()).Round(2)

	owed := taxable.Add(tax)
	applied := c.giftCard
	if applied.GreaterThan(owed) {
		applied = owed
	}

	c.subtotal = subtotal
	c.discount = discount
	c.tax = tax
	c.applied = applied
	c.total = owed.Sub(applied)
	c.priced = true

	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnChange registers a listener invoked after every reprice.
func (c *Checkout) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// taxRate resolves the applicable rate for the current destination. Caller
// holds the mutex.
func (c *Checkout) taxRate() decimal.Decimal {
	destination := c.shippingAddress
	if destination == nil {
		destination = c.address
	}
	if destination == nil {
		return decimal.Zero
	}
	return c.taxRates[strings.ToUpper(strings.TrimSpace(destination.Country))]
}
