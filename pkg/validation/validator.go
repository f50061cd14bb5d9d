package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"todoserver/internal/core/model/response"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validator.RegisterTranslation("oneof", Translator, func(ut ut.Translator) error {
		return ut.Add("oneof", "{0} must be one of [{1}]", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("oneof", getFieldName(fe.Field()), fe.Param())
		return t
	})

	Validator.RegisterTranslation("hostname_port", Translator, func(ut ut.Translator) error {
		return ut.Add("hostname_port", "{0} must be a host:port pair", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("hostname_port", getFieldName(fe.Field()))
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Port":         "port",
		"GinMode":      "gin_mode",
		"StoreDriver":  "store_driver",
		"MaxBodyBytes": "max_body_bytes",
		"LogLevel":     "log_level",
		"LokiURL":      "loki_url",
		"MetricsPort":  "metrics_port",
		"OTLPEndpoint": "otlp_endpoint",
		"Requests":     "requests",
		"Window":       "window",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func ValidateStruct(s interface{}) error {
	return Validator.Struct(s)
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errs []response.ValidationError

	var validationErrors validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			errs = append(errs, response.ValidationError{
				Field:   getFieldName(fieldError.Field()),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errs
}

// Error flattens validation failures into a single error, one "field: message"
// pair per failure. Errors that are not validation errors are returned as is.
func Error(err error) error {
	if err == nil {
		return nil
	}

	formatted := FormatValidationErrors(err)

	if len(formatted) == 0 {
		return err
	}

	parts := make([]string, 0, len(formatted))

	for _, e := range formatted {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}
