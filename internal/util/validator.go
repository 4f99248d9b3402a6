package util

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/guregu/null.v3"
)

func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("caseinsensitiveoneof", caseInsensitiveOneOf)
	validate.RegisterValidation("routepath", routePath)
	validate.RegisterCustomTypeFunc(nullIntValuer, null.Int{})
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})
	validate.RegisterCustomTypeFunc(nullFloatValuer, null.Float{})

	return validate
}

func caseInsensitiveOneOf(fl validator.FieldLevel) bool {
	val := strings.ToLower(fl.Field().String())
	candidates := strings.Split(strings.ToLower(fl.Param()), " ")
	for _, v := range candidates {
		if val == v {
			return true
		}
	}
	return false
}

// routePath accepts absolute navigation paths without a scheme or host.
func routePath(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") && !strings.ContainsAny(val, " \t\r\n")
}

func nullIntValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(null.Int); ok && valuer.Valid {
		return valuer.Int64
	}

	return nil
}

func nullStringValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(null.String); ok && valuer.Valid {
		return valuer.String
	}

	return nil
}

func nullFloatValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(null.Float); ok && valuer.Valid {
		return valuer.Float64
	}

	return nil
}
