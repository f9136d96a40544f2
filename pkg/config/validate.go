package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOption is wrapped by every error returned from Validate.
var ErrInvalidOption = errors.New("invalid adapter option")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report yaml option names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the options in the same order the adapter consumes them:
// sender address, subjects, then the remaining struct rules. Only the first
// problem is reported. Call Defaults first.
func (c Config) Validate() error {
	if c.invalidFrom != nil {
		return optionError(fmt.Sprintf("options.from is required and must be a string (got %T)", c.invalidFrom))
	}
	if c.From == "" {
		return optionError("options.from is required and must be a string")
	}
	if err := c.SubjectPasswordResetEmail.Validate("subjectPasswordResetEmail"); err != nil {
		return optionError(err.Error())
	}
	if err := c.SubjectVerificationEmail.Validate("subjectVerificationEmail"); err != nil {
		return optionError(err.Error())
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return optionError(describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("options.%s is required and must be a string", fe.Field())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("options.%s failed the %s=%s check (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("options.%s failed the %s check (got %v)", fe.Field(), fe.Tag(), fe.Value())
}

func optionError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOption, msg)
}
