package domain

import (
	"maps"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "finite" rejects NaN and infinities, which min/max tags let through.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
		default:
			return true
		}
	})
	return v
}

// Validator returns the shared validator so that other packages validate
// their configuration with the same custom tags.
func Validator() *validator.Validate { return validate }

// cloneParams creates a shallow copy of a parameter map to prevent aliasing.
// Returns nil for nil input to maintain consistency.
func cloneParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	maps.Copy(result, m)
	return result
}
