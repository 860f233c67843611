package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rubiojr/cinegrid/pkg/auth"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateCredentials checks the validate tags of an auth request. Field
// failures map to the auth sentinels so they render like service errors:
// a bad Email is ErrInvalidEmail and a bad Password is passwordErr.
func validateCredentials(req any, passwordErr error) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}
	switch verrs[0].Field() {
	case "Email":
		return auth.ErrInvalidEmail
	case "Password":
		return passwordErr
	}
	return fmt.Errorf("invalid %s", verrs[0].Field())
}
