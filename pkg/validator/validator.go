package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

// FieldErrors maps the json name of each failing field to a readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

type validator struct {
	v *playground.Validate
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)

// New builds a validator with the service's custom tags registered:
// isodate (YYYY-MM-DD), clocktime (HH:MM or HH:MM:SS) and phone.
func New() Validator {
	v := playground.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl playground.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clocktime", func(fl playground.FieldLevel) bool {
		s := fl.Field().String()
		if _, err := time.Parse("15:04", s); err == nil {
			return true
		}
		_, err := time.Parse("15:04:05", s)
		return err == nil
	})
	_ = v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &validator{v: v}
}

// Validate returns FieldErrors when obj breaks any of its rules.
func (v *validator) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid id"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "clocktime":
		return "must be a time in HH:MM format"
	case "phone":
		return "must be a valid phone number"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", strings.ToLower(fe.Param()))
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// AsAppError turns FieldErrors into a validation AppError. Any other error
// from Validate is reported as a bad request.
func AsAppError(err error) error {
	var fields FieldErrors
	if errors.As(err, &fields) {
		return apperrors.Validation(fields)
	}
	return apperrors.BadRequest("invalid request", err)
}
