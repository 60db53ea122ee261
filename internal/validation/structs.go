package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"hrdesk/internal/models"

	"github.com/go-playground/validator/v10"
)

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates the `validate` tags of v and returns the violations keyed
// by JSON field name.
func Struct(v any) models.Violations {
	violations := models.Violations{}
	err := validate.Struct(v)
	if err == nil {
		return violations
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		violations.Add("_", err.Error())
		return violations
	}
	for _, fe := range errs {
		violations.Add(fe.Field(), tagMessage(fe))
	}
	return violations
}

func tagMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "dive", "unique":
		return fmt.Sprintf("The %s field has duplicate values.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}
