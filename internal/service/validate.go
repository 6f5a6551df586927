package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/b-cinema/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates s and converts failures into a ValidationError.
func check(s any) *ValidationError {
	ve := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return ve
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		ve.add("_", err.Error())
		return ve
	}
	for _, fe := range fes {
		ve.add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseDate accepts YYYY-MM-DD.
func parseDate(s string) (time.Time, bool) {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(s), time.UTC)
	return d, err == nil
}

// parseClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func parseClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{model.TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.TimeLayout), true
		}
	}
	return "", false
}
