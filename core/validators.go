package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DateFormat is the calendar-date format used on the wire ("YYYY-MM-DD").
const DateFormat = "2006-01-02"

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	dateOnlyTag  = "dateonly"
	dateOnlyText = "must be a valid date in YYYY-MM-DD format"

	timeSlotTag   = "timeslot"
	timeSlotText  = "must be a valid time slot in HH:MM-HH:MM format"
	timeSlotRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
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
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(dateOnlyTag, dateOnlyValidation)
	RegisterCustomTranslation(validate, translator, dateOnlyTag, dateOnlyText)

	_ = validate.RegisterValidation(timeSlotTag, timeSlotValidation)
	RegisterCustomTranslation(validate, translator, timeSlotTag, timeSlotText)

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

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// dateOnlyValidation allows calendar dates in "YYYY-MM-DD" format.
func dateOnlyValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateFormat, fl.Field().String())
	return err == nil
}

// timeSlotValidation allows "HH:MM-HH:MM" ranges with start < end.
func timeSlotValidation(fl validator.FieldLevel) bool {
	return ValidTimeSlot(fl.Field().String())
}

// ValidTimeSlot reports whether slot is a well-formed "HH:MM-HH:MM" range
// whose start precedes its end.
func ValidTimeSlot(slot string) bool {
	if !timeSlotRegex.MatchString(slot) {
		return false
	}
	parts := strings.SplitN(slot, "-", 2)
	return parts[0] < parts[1]
}
