package walletpay

import (
	"walletpay-backend/pkg/validator"
)

// assemble merges caller options, gateway metadata, and the sheet
// capability facts into one immutable session configuration. It fails fast:
// the first missing or invalid field aborts assembly.
func assemble(opts Options, info GatewayInfo, sheet SheetAPI) (*SessionConfig, *Error) {
	i18n := opts.I18n
	if i18n.TotalLineItemLabel == "" && opts.Label != "" {
		i18n.TotalLineItemLabel = opts.Label
	}
	i18n = i18n.withDefaults()

	cfg := &SessionConfig{
		I18n:                          i18n,
		Form:                          opts.Form,
		Pricing:                       opts.Pricing,
		RequiredShippingContactFields: opts.RequiredShippingContactFields,
		DisplayName:                   info.DisplayName,
		ApplicationData:               info.ApplicationData,
		MerchantCapabilities:          info.MerchantCapabilities,
		Extra:                         opts.Extra,
	}

	switch {
	case opts.Pricing != nil:
		// Static total and line items are ignored on the pricing path.
	case opts.TotalItem != nil:
		cfg.TotalItem = *opts.TotalItem
		cfg.LineItems = opts.LineItems
	case opts.Total != "":
		if !validator.ValidateAmount(opts.Total) {
			return nil, configInvalidError("total", nil)
		}
		cfg.TotalItem = LineItem{Label: i18n.TotalLineItemLabel, Amount: opts.Total}
		cfg.LineItems = opts.LineItems
	default:
		return nil, configMissingError("total")
	}

	if opts.Country == "" {
		return nil, configMissingError("country")
	}
	if !contains(info.Countries, opts.Country) {
		return nil, configInvalidError("country", info.Countries)
	}
	cfg.Country = opts.Country

	if opts.Currency == "" {
		return nil, configMissingError("currency")
	}
	if !contains(info.Currencies, opts.Currency) {
		return nil, configInvalidError("currency", info.Currencies)
	}
	cfg.Currency = opts.Currency

	if opts.EnforceVersion && len(opts.RequiredShippingContactFields) > 0 &&
		!sheet.SupportsVersion(requiredContactFieldsVersion) {
		return nil, notSupportedError()
	}

	cfg.SupportedNetworks = filterSupportedNetworks(info.SupportedNetworks, sheet)
	if len(opts.SupportedNetworks) > 0 {
		cfg.SupportedNetworks = intersect(cfg.SupportedNetworks, opts.SupportedNetworks)
	}

	cfg.Billing = deriveBillingContact(opts)
	cfg.Shipping = deriveShippingContact(opts)

	return cfg, nil
}

// deriveBillingContact resolves the billing contact by precedence: explicit
// override, then the pricing model's address, then the form fields. The
// phone number belongs to the shipping contact, so it is stripped here.
func deriveBillingContact(opts Options) *Contact {
	if opts.BillingContact != nil {
		return opts.BillingContact
	}
	if opts.Pricing != nil {
		if contact := contactWithoutPhone(opts.Pricing.Address()); contact != nil {
			return contact
		}
	}
	if contact := contactFromForm(opts.Form); contact != nil {
		contact.PhoneNumber = ""
		if !contact.isZero() {
			return contact
		}
	}
	return nil
}

// deriveShippingContact resolves the shipping contact: explicit override,
// then the pricing shipping address (falling back to the billing address's
// phone number), then the form phone field. Omission means the sheet will
// not treat shipping as in use.
func deriveShippingContact(opts Options) *Contact {
	if opts.ShippingContact != nil {
		return opts.ShippingContact
	}
	if opts.Pricing != nil {
		contact := contactFromAddress(opts.Pricing.ShippingAddress())
		phone := ""
		if address := opts.Pricing.Address(); address != nil {
			phone = address.Phone
		}
		if contact == nil && phone != "" {
			return &Contact{PhoneNumber: phone}
		}
		if contact != nil {
			if contact.PhoneNumber == "" {
				contact.PhoneNumber = phone
			}
			return contact
		}
	}
	if phone := opts.Form["phone"]; phone != "" {
		return &Contact{PhoneNumber: phone}
	}
	return nil
}

func contactWithoutPhone(a *Address) *Contact {
	if a == nil {
		return nil
	}
	stripped := *a
	stripped.Phone = ""
	return contactFromAddress(&stripped)
}

func contains(set []string, value string) bool {
	for _, entry := range set {
		if entry == value {
			return true
		}
	}
	return false
}

func intersect(a, b []string) []string {
	result := make([]string, 0, len(a))
	for _, entry := range a {
		if contains(b, entry) {
			result = append(result, entry)
		}
	}
	return result
}
