package walletpay

import "strings"

// Address is the flat form-field shape used by checkout forms and the
// pricing model.
type Address struct {
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Address1   string `json:"address1,omitempty"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Contact is the payment-sheet contact shape.
type Contact struct {
	GivenName          string   `json:"givenName,omitempty"`
	FamilyName         string   `json:"familyName,omitempty"`
	AddressLines       []string `json:"addressLines,omitempty"`
	Locality           string   `json:"locality,omitempty"`
	AdministrativeArea string   `json:"administrativeArea,omitempty"`
	PostalCode         string   `json:"postalCode,omitempty"`
	CountryCode        string   `json:"countryCode,omitempty"`
	PhoneNumber        string   `json:"phoneNumber,omitempty"`
	EmailAddress       string   `json:"emailAddress,omitempty"`
}

// addressFieldNames are the form keys recognized as address input. Any other
// form field is forwarded untouched to the tokenization payload.
var addressFieldNames = map[string]bool{
	"first_name":  true,
	"last_name":   true,
	"address1":    true,
	"address2":    true,
	"city":        true,
	"state":       true,
	"postal_code": true,
	"country":     true,
	"phone":       true,
}

func contactFromAddress(a *Address) *Contact {
	if a == nil {
		return nil
	}
	c := &Contact{
		GivenName:          a.FirstName,
		FamilyName:         a.LastName,
		Locality:           a.City,
		AdministrativeArea: a.State,
		PostalCode:         a.PostalCode,
		CountryCode:        a.Country,
		PhoneNumber:        a.Phone,
	}
	if a.Address1 != "" {
		c.AddressLines = append(c.AddressLines, a.Address1)
	}
	if a.Address2 != "" {
		c.AddressLines = append(c.AddressLines, a.Address2)
	}
	if c.isZero() {
		return nil
	}
	return c
}

func contactFromForm(form map[string]string) *Contact {
	if len(form) == 0 {
		return nil
	}
	return contactFromAddress(&Address{
		FirstName:  form["first_name"],
		LastName:   form["last_name"],
		Address1:   form["address1"],
		Address2:   form["address2"],
		City:       form["city"],
		State:      form["state"],
		PostalCode: form["postal_code"],
		Country:    form["country"],
		Phone:      form["phone"],
	})
}

func (c *Contact) isZero() bool {
	return c.GivenName == "" && c.FamilyName == "" && len(c.AddressLines) == 0 &&
		c.Locality == "" && c.AdministrativeArea == "" && c.PostalCode == "" &&
		c.CountryCode == "" && c.PhoneNumber == "" && c.EmailAddress == ""
}

// toAddress converts a sheet contact back into the flat address shape.
func (c *Contact) toAddress() *Address {
	if c == nil {
		return nil
	}
	a := &Address{
		FirstName:  c.GivenName,
		LastName:   c.FamilyName,
		City:       c.Locality,
		State:      c.AdministrativeArea,
		PostalCode: c.PostalCode,
		Country:    c.CountryCode,
		Phone:      c.PhoneNumber,
	}
	if len(c.AddressLines) > 0 {
		a.Address1 = c.AddressLines[0]
	}
	if len(c.AddressLines) > 1 {
		a.Address2 = c.AddressLines[1]
	}
	return a
}

// addressFields flattens a contact into form-style address fields for the
// tokenization payload.
func (c *Contact) addressFields() map[string]string {
	fields := make(map[string]string)
	if c == nil {
		return fields
	}
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("first_name", c.GivenName)
	set("last_name", c.FamilyName)
	if len(c.AddressLines) > 0 {
		set("address1", c.AddressLines[0])
	}
	if len(c.AddressLines) > 1 {
		set("address2", c.AddressLines[1])
	}
	set("city", c.Locality)
	set("state", c.AdministrativeArea)
	set("postal_code", c.PostalCode)
	set("country", c.CountryCode)
	set("phone", c.PhoneNumber)
	return fields
}

func normalizedZone(postalCode, country string) string {
	normalize := func(s string) string {
		return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	}
	return normalize(postalCode) + "|" + normalize(country)
}

// addressZoneChanged reports whether the normalized postal-code and
// country-code pair differs between two addresses. Tax and shipping rules
// only depend on this pair, so it is the reprice trigger.
func addressZoneChanged(prev *Address, next *Contact) bool {
	if next == nil {
		return false
	}
	var prevZone string
	if prev != nil {
		prevZone = normalizedZone(prev.PostalCode, prev.Country)
	} else {
		prevZone = normalizedZone("", "")
	}
	return prevZone != normalizedZone(next.PostalCode, next.CountryCode)
}
