package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type registrationInput struct {
	Username  string `validate:"required"`
	Password  string `validate:"required"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Phone     string `validate:"required"`
}

// All five registration fields are required and non-empty; the phone format
// is deliberately not validated.
func validateRegistration(in RegisterInput) error {
	err := validate.Struct(registrationInput{
		Username:  in.Username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return ErrValidation.WithCause(fmt.Errorf("missing required fields: %s", strings.Join(fields, ", ")))
	}

	return ErrValidation.WithCause(err)
}
