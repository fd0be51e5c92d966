package app

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"hotel_booking/internal/domain"
)

// looseEmail is the same shape check the sign-in screens always used.
var looseEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	return v
}

type messages struct {
	required string
	email    string
	password string
}

// check validates in with tag order required → email → password length and
// returns the first matching user-facing message.
func check(in any, msg messages) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.InvalidInput(err.Error())
	}
	var email, password bool
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return domain.InvalidInput(msg.required)
		case "loose_email":
			email = true
		case "min":
			password = true
		}
	}
	if email {
		return domain.InvalidInput(msg.email)
	}
	if password {
		return domain.InvalidInput(msg.password)
	}
	return domain.InvalidInput(verrs.Error())
}
