package serverutils

import (
	"fmt"

	"ai-chathub-be/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags on a request DTO and folds the first
// failure into a validation error the error middleware maps to 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return apperr.Validation(fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperr.Validation(err.Error())
}
