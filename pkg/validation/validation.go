// Package validation checks gateway request bodies with struct tags and
// reports failures using the field's JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "onecore/pkg/domain-errors"
)

// Leasing contact codes: one or two capitals then digits (P123456, F00123).
var contactCodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{3,10}$`)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("contactcode", func(fl validator.FieldLevel) bool {
		return IsContactCode(fl.Field().String())
	}))
	return v
}()

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return lowerFirst(f.Name)
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// IsContactCode reports whether code looks like a leasing contact code.
func IsContactCode(code string) bool {
	return contactCodePattern.MatchString(code)
}

// Validate runs the struct's validate tags. The first failing field becomes
// a CodeValidation error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, describe(err))
}

var tagMessages = map[string]string{
	"required":    "%s is required",
	"notblank":    "%s must not be blank",
	"contactcode": "%s must be a valid contact code",
	"uuid":        "%s must be a valid uuid",
	"min":         "%s must be at least %s",
	"gte":         "%s must be at least %s",
	"max":         "%s must be at most %s",
	"lte":         "%s must be at most %s",
	"oneof":       "%s must be one of [%s]",
	"datetime":    "%s must be a date in %s format",
}

func describe(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request body"
	}
	fe := errs[0]
	field := fe.Field()
	msg, ok := tagMessages[fe.ActualTag()]
	switch {
	case field == "":
		return "invalid request body"
	case !ok:
		return field + " is invalid"
	case strings.Count(msg, "%s") == 2:
		return fmt.Sprintf(msg, field, fe.Param())
	default:
		return fmt.Sprintf(msg, field)
	}
}
