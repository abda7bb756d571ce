package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func Init() {
	validate = validator.New()

	registerCustomValidations(validate)

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomValidations(engine)
	}
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("country_code", validateCountryCode)
	v.RegisterValidation("currency_code", validateCurrencyCode)
	v.RegisterValidation("amount", validateAmount)
}

func Validate(s interface{}) error {
	if validate == nil {
		Init()
	}
	return validate.Struct(s)
}

// ValidateCountryCode reports whether the value looks like an ISO 3166-1
// alpha-2 country code.
func ValidateCountryCode(code string) bool {
	matched, _ := regexp.MatchString(`^[A-Z]{2}$`, strings.TrimSpace(code))
	return matched
}

// ValidateCurrencyCode reports whether the value looks like an ISO 4217
// currency code.
func ValidateCurrencyCode(code string) bool {
	matched, _ := regexp.MatchString(`^[A-Z]{3}$`, strings.TrimSpace(code))
	return matched
}

// ValidateAmount reports whether the value is a decimal amount string such
// as "3.49" or "-10.00".
func ValidateAmount(amount string) bool {
	matched, _ := regexp.MatchString(`^-?\d+(\.\d{1,2})?$`, strings.TrimSpace(amount))
	return matched
}

func validateCountryCode(fl validator.FieldLevel) bool {
	return ValidateCountryCode(fl.Field().String())
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return ValidateCurrencyCode(fl.Field().String())
}

func validateAmount(fl validator.FieldLevel) bool {
	return ValidateAmount(fl.Field().String())
}

func TrimSpaces(s string) string {
	return strings.TrimSpace(s)
}

func ValidateURL(url string) bool {
	urlRegex := regexp.MustCompile(`^https?://[a-zA-Z0-9\-\.]+(:\d+)?(/.*)?$`)
	return urlRegex.MatchString(url)
}
