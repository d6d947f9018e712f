package handler

import (
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the lead-specific validation tags.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("leadstatus", func(fl playground.FieldLevel) bool {
		return domain.IsKnownStatus(fl.Field().String())
	})
}
