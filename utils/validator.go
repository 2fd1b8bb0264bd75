package utils

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/reservation-app/availability"
)

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = "2006-01-02"

var phonePattern = regexp.MustCompile(`^\d{10}$`)

var hhmm validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := availability.ParseClock(s)
	return err == nil && len(s) == 5
}

var isoDate validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

var phone validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && phonePattern.MatchString(s)
}

var customValidators = map[string]validator.Func{
	"hhmm":    hhmm,
	"isodate": isoDate,
	"phone":   phone,
}

// RegisterValidators adds the hhmm, isodate and phone tags to gin's binding
// engine. It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return registerAll(v, customValidators)
}

func registerAll(v *validator.Validate, fns map[string]validator.Func) error {
	for tag, fn := range fns {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return nil
}
