package customer

import (
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"strings"
)

type ValidationReason int

const (
	ReasonBadData ValidationReason = iota + 1
	ReasonMissingField
	ReasonEmptyField
	ReasonCreditMismatch
)

func (r ValidationReason) String() string {
	switch r {
	case ReasonBadData:
		return "bad_data"
	case ReasonMissingField:
		return "missing_field"
	case ReasonEmptyField:
		return "empty_field"
	case ReasonCreditMismatch:
		return "credit_mismatch"
	default:
		return "unknown"
	}
}

// DataValidationError is returned when customer input cannot be accepted.
// It matches apperrors.ErrValidation under errors.Is.
type DataValidationError struct {
	Reason  ValidationReason
	Field   string
	Message string
	Cause   error
}

func (e *DataValidationError) Error() string {
	return "Invalid Customer: " + e.Message
}

func (e *DataValidationError) Is(target error) bool {
	return target == apperrors.ErrValidation
}

func (e *DataValidationError) Unwrap() error {
	return e.Cause
}

// NewBadDataError reports a request body that is not a customer object.
func NewBadDataError(cause error) error {
	return &DataValidationError{
		Reason:  ReasonBadData,
		Message: "body of request contained bad or no data",
		Cause:   cause,
	}
}

// Input carries the client-supplied fields of a customer. Absent JSON keys
// stay nil so that missing and empty values can be told apart.
type Input struct {
	FirstName   *string
	LastName    *string
	Valid       *bool
	CreditLevel *int64
}

func (in Input) hasCreditPair() bool {
	return in.Valid != nil && in.CreditLevel != nil
}

// Validate checks the names and, when both credit fields are supplied, the
// validity/credit invariant. A lone credit field is ignored.
func (in Input) Validate() error {
	if err := requireName("firstname", in.FirstName); err != nil {
		return err
	}
	if err := requireName("lastname", in.LastName); err != nil {
		return err
	}

	if !in.hasCreditPair() {
		return nil
	}
	valid, level := *in.Valid, *in.CreditLevel
	switch {
	case valid && level < 0:
		return &DataValidationError{
			Reason:  ReasonCreditMismatch,
			Field:   "valid",
			Message: fmt.Sprintf("customer with negative credit_level %d cannot be valid", level),
		}
	case !valid && level >= 0:
		return &DataValidationError{
			Reason:  ReasonCreditMismatch,
			Field:   "valid",
			Message: fmt.Sprintf("customer with non-negative credit_level %d must be valid", level),
		}
	}
	return nil
}

func requireName(field string, value *string) error {
	if value == nil {
		return &DataValidationError{Reason: ReasonMissingField, Field: field, Message: "missing " + field}
	}
	if strings.TrimSpace(*value) == "" {
		return &DataValidationError{Reason: ReasonEmptyField, Field: field, Message: field + " cannot be empty"}
	}
	return nil
}
