package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their configuration key rather than their
// Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}

// checkFormats applies the validate tags of Config and reports every key
// that fails, with the flag and environment variable that set it.
func checkFormats(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return InvalidConfigError{strings.Join(messages, "; ")}
}

func describe(fe validator.FieldError) string {
	key := fe.Field()
	var problem string
	switch fe.Tag() {
	case "url":
		problem = fmt.Sprintf("%q must be an absolute URL, got %q", key, fe.Value())
	default:
		problem = fmt.Sprintf("%q does not satisfy %q", key, fe.Tag())
	}

	flagName := strings.ReplaceAll(key, "_", "-")
	if f, ok := reflect.TypeOf(Config{}).FieldByName(fe.StructField()); ok && f.Tag.Get("flag") != "" {
		flagName = f.Tag.Get("flag")
	}
	return fmt.Sprintf("%s (set with --%s or %s_%s)", problem, flagName, EnvPrefix, strings.ToUpper(key))
}
