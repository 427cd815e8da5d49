package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// language codes arrive as bare ISO 639-1 ("en", "he") or with a region
// suffix ("pt-BR"); the transcription provider accepts both.
var languageCodeRe = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2})?$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("language_code", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return languageCodeRe.MatchString(value)
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
