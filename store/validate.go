package store

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"salon-server/models"
	"salon-server/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs struct tag validation followed by the model's own checks and
// converts any failure into a ValidationError.
func Validate(entity any) error {
	if err := validate.Struct(entity); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return types.NewValidation("%s", describe(fieldErrs[0]))
		}
		return types.NewValidation("%v", err)
	}
	if v, ok := entity.(models.Validator); ok {
		return v.Validate()
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "datetime":
		return field + " must match the layout " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	default:
		return field + " is invalid"
	}
}
