package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// RegisterCustomValidations installs the ledger's binding validations on
// gin's default validator engine. Call once at startup.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("tokentype", validTokenType)
}

// validTokenType accepts the enumerated token types, on either the raw string
// or the domain alias.
func validTokenType(fl validator.FieldLevel) bool {
	var value string
	switch f := fl.Field().Interface().(type) {
	case domain.TokenType:
		value = string(f)
	case string:
		value = f
	default:
		return false
	}
	return domain.TokenType(value) == domain.CirculatingUnit
}
