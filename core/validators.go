package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Translator is the app-wide translator; set by InitValidators.
var Translator ut.Translator

var (
	// custom validation tags & texts
	icaoTag   = "icao"
	icaoText  = "must be a 4-letter ICAO location indicator"
	icaoRegex = regexp.MustCompile(`^[A-Z]{4}$`)

	tailNumberTag   = "tailnumber"
	tailNumberText  = "must be a valid aircraft registration"
	tailNumberRegex = regexp.MustCompile(`^[A-Z]{1,2}-?[A-Z0-9]{1,5}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	Translator = translator
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(icaoTag, icaoValidation)
	RegisterCustomTranslation(validate, translator, icaoTag, icaoText)

	_ = validate.RegisterValidation(tailNumberTag, tailNumberValidation)
	RegisterCustomTranslation(validate, translator, tailNumberTag, tailNumberText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// icaoValidation only allows 4-letter uppercase ICAO location indicators.
func icaoValidation(fl validator.FieldLevel) bool {
	return icaoRegex.MatchString(fl.Field().String())
}

// tailNumberValidation allows common aircraft registration formats (YR-ABC, N123AB, ...).
func tailNumberValidation(fl validator.FieldLevel) bool {
	return tailNumberRegex.MatchString(strings.ToUpper(fl.Field().String()))
}
