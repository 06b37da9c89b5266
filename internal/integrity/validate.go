package integrity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/noc-desk/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names so messages match the form labels.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateFields checks the struct tags on t. The first failure is returned
// as a *MissingRequiredFieldError or *InvalidFieldError.
func ValidateFields(t model.Ticket) error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating ticket: %w", err)
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return &MissingRequiredFieldError{Field: fe.Field()}
	}
	return &InvalidFieldError{Field: fe.Field(), Value: fmt.Sprint(fe.Value())}
}
