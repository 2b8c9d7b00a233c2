package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"huts4u-backend/internal/parse"
)

// RegisterValidators adds the slot and bookingtype rules to gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	rules := map[string]validator.Func{
		"slot": func(fl validator.FieldLevel) bool {
			_, err := parse.ParseSlot(fl.Field().String())
			return err == nil
		},
		"bookingtype": func(fl validator.FieldLevel) bool {
			_, err := parse.ParseBookingType(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
