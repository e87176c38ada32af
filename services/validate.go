package services

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"eventapi/models"
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmm.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// firstViolation turns the first failed rule into a client message using the
// struct's message table, keyed by "Field.tag" or "Field".
func firstViolation(err error, messages map[string]string, fallback string) *Error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return validation(fallback)
	}
	fe := verrs[0]
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return validation(msg)
	}
	if msg, ok := messages[fe.Field()]; ok {
		return validation(msg)
	}
	return validation(fallback)
}
