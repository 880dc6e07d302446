package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// pdmClockStep is the granularity of PDM bit clocks in kHz-equivalent units.
const pdmClockStep = 768

// InitializeValidators registers custom validation rules with Gin's binding engine.
// Must be called during application startup to enable custom validation tags.
// Panics if validator registration fails, as this is a critical configuration error.
func InitializeValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators adds the stream_rate and word_length tags to v and
// reports field names by their json tag.
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("stream_rate", streamRateValidator); err != nil {
		panic(fmt.Sprintf("Failed to register stream_rate validator: %v", err))
	}
	if err := v.RegisterValidation("word_length", wordLengthValidator); err != nil {
		panic(fmt.Sprintf("Failed to register word_length validator: %v", err))
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// streamRateValidator accepts a table-backed PCM rate or a PDM bit clock.
// Whether the route can actually carry the rate is decided by the engine.
func streamRateValidator(fl validator.FieldLevel) bool {
	r := fl.Field().Int()
	if r <= 0 {
		return false
	}
	return swire.SampleRate(r).IsSupported() || r%pdmClockStep == 0
}

func wordLengthValidator(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= swire.MaxWordLength
}
