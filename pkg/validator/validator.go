package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/voxdesk-app/voxdesk/pkg/phone"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a validator with the platform's custom rules registered.
func New() *CustomValidator {
	v := validator.New()

	// "e164_phone" accepts normalized international numbers only.
	_ = v.RegisterValidation("e164_phone", func(fl validator.FieldLevel) bool {
		return phone.IsValidE164(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
