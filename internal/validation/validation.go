// Package validation checks user-submitted forms and reports per-field messages.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"tarvee/internal/model"
)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// messages is keyed by "field.tag", falling back to "field".
var messages = map[string]string{
	"title":              "Title must be at least 3 characters.",
	"description":        "Description must be at least 10 characters.",
	"category":           "Please select a category.",
	"condition":          "You need to select a condition.",
	"price":              "Price must be a positive number.",
	"image":              "An image is required.",
	"imageType":          "The image must be a PNG, JPEG, GIF or WebP file.",
	"email":              "Invalid email address.",
	"password":           "Password is required.",
	"password.min":       "Password must be at least 6 characters.",
	"password.required":  "Password is required.",
	"imageType.required": "An image is required.",
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their json name and knows
// the "category" and "condition" tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return model.Condition(fl.Field().String()).Valid()
	})
	return &Validator{v: v}
}

// Struct validates s. It returns nil or FieldErrors; any other failure of the
// validator itself is returned unchanged.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageFor(field, fe.Tag())
	}
	return out
}

func messageFor(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	if m, ok := messages[field]; ok {
		return m
	}
	return "Invalid value."
}
