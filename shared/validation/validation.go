package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the structured list of field-level errors returned by
// Validator.Struct.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, fieldErr := range v {
		messages = append(messages, fieldErr.Field+": "+fieldErr.Message)
	}

	return strings.Join(messages, "; ")
}

// Validator validates structs tagged with validate rules and translates
// failures into English field-level messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	locale := en.New()
	translator, ok := ut.New(locale, locale).GetTranslator("en")
	if !ok {
		return nil, errors.New("english translator not registered")
	}

	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, fmt.Errorf("failed to register validation translations: %w", err)
	}

	return &Validator{
		validate:   validate,
		translator: translator,
	}, nil
}

// Struct validates s and returns a ValidationErrors with one entry per
// failing field, or nil if s is valid.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}

	fieldErrors := make(ValidationErrors, 0, len(invalid))
	for _, fieldErr := range invalid {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fieldErr.Field(),
			Message: fieldErr.Translate(v.translator),
		})
	}

	return fieldErrors
}

// IsEmail reports whether s has valid email syntax. It performs no lookups.
func (v *Validator) IsEmail(s string) bool {
	return v.validate.Var(s, "email") == nil
}
