package walletpay

// I18n is the localized label table for derived line items. Zero-valued
// fields fall back to the defaults.
type I18n struct {
	TotalLineItemLabel    string
	SubtotalLineItemLabel string
	DiscountLineItemLabel string
	TaxLineItemLabel      string
	GiftCardLineItemLabel string
}

var defaultI18n = I18n{
	TotalLineItemLabel:    "Total",
	SubtotalLineItemLabel: "Subtotal",
	DiscountLineItemLabel: "Discount",
	TaxLineItemLabel:      "Tax",
	GiftCardLineItemLabel: "Gift card",
}

func (i I18n) withDefaults() I18n {
	merged := defaultI18n
	if i.TotalLineItemLabel != "" {
		merged.TotalLineItemLabel = i.TotalLineItemLabel
	}
	if i.SubtotalLineItemLabel != "" {
		merged.SubtotalLineItemLabel = i.SubtotalLineItemLabel
	}
	if i.DiscountLineItemLabel != "" {
		merged.DiscountLineItemLabel = i.DiscountLineItemLabel
	}
	if i.TaxLineItemLabel != "" {
		merged.TaxLineItemLabel = i.TaxLineItemLabel
	}
	if i.GiftCardLineItemLabel != "" {
		merged.GiftCardLineItemLabel = i.GiftCardLineItemLabel
	}
	return merged
}

// BridgeOptions carries the alternate-authorization credential that binds
// the bridge strategy.
type BridgeOptions struct {
	ClientAuthorization string
}

// Options are the caller-supplied session options. Total (or TotalItem) and
// Pricing are mutually exclusive amount sources; the pricing model wins when
// both are present.
type Options struct {
	// Label names the purchase on the sheet; it doubles as the default
	// total line item label.
	Label string

	// Total is a static priced amount such as "3.49".
	Total string
	// TotalItem overrides Total with a fully specified total line item.
	TotalItem *LineItem
	// LineItems are static secondary line items, ignored when Pricing is
	// bound.
	LineItems []LineItem

	Country  string
	Currency string

	I18n I18n

	// Contact overrides. Once supplied they are fixed for the session's
	// lifetime and never re-derived from later pricing changes.
	BillingContact  *Contact
	ShippingContact *Contact

	// Form is the flat checkout form: recognized address fields seed the
	// contacts, anything else is forwarded to tokenization untouched.
	Form map[string]string

	RequiredShippingContactFields []string

	// SupportedNetworks narrows the gateway-declared network set.
	SupportedNetworks []string

	// EnforceVersion fails initialization when the host cannot honor
	// RequiredShippingContactFields.
	EnforceVersion bool

	Pricing Pricing

	Bridge *BridgeOptions
	Action *ActionToken

	// Extra fields pass through verbatim into the sheet payment request.
	Extra map[string]interface{}
}

// SessionConfig is the immutable assembled configuration. Repricing
// produces new derived line items, never a new config.
type SessionConfig struct {
	TotalItem                     LineItem
	LineItems                     []LineItem
	Country                       string
	Currency                      string
	MerchantCapabilities          []string
	SupportedNetworks             []string
	RequiredShippingContactFields []string
	DisplayName                   string
	ApplicationData               string
	I18n                          I18n
	Billing                       *Contact
	Shipping                      *Contact
	Form                          map[string]string
	Pricing                       Pricing
	Extra                         map[string]interface{}
}

// GatewayInfo is the merchant/gateway metadata fetched from the info route.
type GatewayInfo struct {
	Countries            []string `json:"countries"`
	Currencies           []string `json:"currencies"`
	MerchantCapabilities []string `json:"merchantCapabilities"`
	SupportedNetworks    []string `json:"supportedNetworks"`
	DisplayName          string   `json:"displayName"`
	ApplicationData      string   `json:"applicationData"`
}
