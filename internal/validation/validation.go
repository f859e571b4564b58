// Package validation checks request input before any flow touches storage and
// reports every offending field at once.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned by Struct when at least one field failed.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Password message matches the one shown by the signup form.
const PasswordMessage = "Password must be 8+ chars, with 1 uppercase, 1 lowercase, 1 number, and 1 special char"

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s using its `validate` tags and returns Errors, keyed by
// the json field names, when any rule fails.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// IsStrongPassword requires 8+ characters, no whitespace, and at least one
// digit, lowercase, uppercase and punctuation or symbol character.
func IsStrongPassword(p string) bool {
	if utf8.RuneCountInString(p) < 8 {
		return false
	}
	var digit, lower, upper, special bool
	for _, r := range p {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return digit && lower && upper && special
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return humanName(fe.Field()) + " is required"
	case "email":
		return "Please provide a valid email address"
	case "password":
		return PasswordMessage
	case "min", "max":
		if fe.Field() == "fullName" {
			return "Name must be between 3 and 50 characters"
		}
		return humanName(fe.Field()) + " must be " + fe.Tag() + " " + fe.Param()
	case "gte":
		return humanName(fe.Field()) + " must not be negative"
	case "oneof":
		return humanName(fe.Field()) + " must be one of: " + fe.Param()
	default:
		return humanName(fe.Field()) + " is invalid"
	}
}

var humanNames = map[string]string{
	"email":       "Email",
	"password":    "Password",
	"newPassword": "Password",
	"fullName":    "Full name",
	"token":       "Token",
	"name":        "Name",
	"price":       "Price",
	"co2Emission": "CO2 emission",
	"items":       "Items",
	"role":        "Role",
	"totalAmount": "Total amount",
	"totalCo2":    "Total CO2",
	"id":          "Product id",
}

func humanName(field string) string {
	if n, ok := humanNames[field]; ok {
		return n
	}
	return field
}
