package validator

import (
	"fmt"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	ErrMinLength = "must contain at least %s items"
	ErrMaxLength = "must contain at most %s items"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("cart_item_type", validateCartItemType)

	return validator
}

func validateCartItemType(fl validator.FieldLevel) bool {
	switch domain.CartItemType(fl.Field().String()) {
	case domain.CartItemIndividual, domain.CartItemFamily, domain.CartItemAddon:
		return true
	default:
		return false
	}
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "min":
		return fmt.Sprintf(ErrMinLength, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxLength, err.Param())
	case "cart_item_type":
		return "must be one of: individual, family, addon"
	default:
		return "is invalid"
	}
}
