// Package validator registers custom validation functions with Gin's
// binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validCurrencies contains the ISO 4217 codes accepted for scenarios.
var validCurrencies = map[string]bool{
	"AUD": true, "BRL": true, "CAD": true, "CHF": true, "CNY": true,
	"CZK": true, "DKK": true, "EUR": true, "GBP": true, "HKD": true,
	"HUF": true, "IDR": true, "ILS": true, "INR": true, "JPY": true,
	"KRW": true, "MXN": true, "MYR": true, "NOK": true, "NZD": true,
	"PHP": true, "PLN": true, "RON": true, "SEK": true, "SGD": true,
	"THB": true, "TRY": true, "TWD": true, "USD": true, "ZAR": true,
}

// Register installs all custom validators into the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("node_kind", validateNodeKind)
		_ = v.RegisterValidation("child_policy", validateChildPolicy)
		_ = v.RegisterValidation("payment_kind", validatePaymentKind)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateNodeKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "folder", "item":
		return true
	}
	return false
}

func validateChildPolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "reparent", "cascade":
		return true
	}
	return false
}

func validatePaymentKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "payment", "refund", "credit":
		return true
	}
	return false
}
