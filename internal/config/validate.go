package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their TOML keys.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
			return fl.Field().Int()%2 == 1
		})
	})
	return validate
}

// Validate checks cfg against its struct tags. All failures are reported in
// one error, keyed by dotted TOML path.
func Validate(cfg Config) error {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fieldPath(e.Namespace())+": "+formatValidationError(e))
	}
	return errors.New("invalid config: " + strings.Join(messages, "; "))
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "odd":
		return "must be odd"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
