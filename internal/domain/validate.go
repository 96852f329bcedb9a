package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var itemValidate *validator.Validate

func init() {
	itemValidate = validator.New()
	_ = itemValidate.RegisterValidation("notblank", validators.NotBlank)
}

// Validate checks the field constraints of item. Failures wrap ErrInvalidItem
// and name every offending field.
func Validate(item Item) error {
	if item == nil || !item.Kind().Valid() {
		return fmt.Errorf("%w: unsupported item", ErrInvalidItem)
	}

	if err := itemValidate.Struct(item); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}

		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
		return fmt.Errorf("%w: %s %s", ErrInvalidItem, item.Kind(), strings.Join(problems, "; "))
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "notblank":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// ValidateSnapshot checks every item and rejects missing or duplicate ids
// within a collection. Failures wrap ErrInvalidDocument.
func ValidateSnapshot(s Snapshot) error {
	for _, kind := range Kinds() {
		seen := make(map[ItemID]struct{}, s.Len(kind))
		for i, item := range s.Items(kind) {
			id := item.Key().ID
			if id <= 0 {
				return fmt.Errorf("%w: %s[%d] has no id", ErrInvalidDocument, kind.Collection(), i)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: duplicate id %d in %s", ErrInvalidDocument, id, kind.Collection())
			}
			seen[id] = struct{}{}

			if err := Validate(item); err != nil {
				return fmt.Errorf("%w: %s[%d]: %w", ErrInvalidDocument, kind.Collection(), i, err)
			}
		}
	}

	return nil
}
