// Package validation envuelve go-playground/validator para los DTOs HTTP.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar errores con el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct valida v y devuelve un error legible (primer campo inválido).
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: this field is required", fe.Field())
	case "min":
		return fmt.Errorf("%s: must be greater than or equal to %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s: must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
}
