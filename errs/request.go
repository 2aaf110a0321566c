package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Request & Input-Validation Errors
var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrInvalidHierarchyName = errors.New("invalid hierarchy name")
	ErrIndexOutOfRange      = errors.New("index out of range")
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("Missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

// NewMissingRequiredFieldsError reports every missing field of a form at once.
func NewMissingRequiredFieldsError(fieldNames []string) *ApiErr {
	if len(fieldNames) == 1 {
		return NewMissingRequiredFieldError(fieldNames[0])
	}
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("Missing required fields: %s", strings.Join(fieldNames, ", ")),
		Field:      strings.Join(fieldNames, ","),
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("Invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

func NewInvalidHierarchyNameError(level, value string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidHierarchyName,
		Details:    fmt.Sprintf("%q: only uppercase letters (A-Z), numbers (0-9), and underscores (_) are allowed", value),
		Field:      level,
	}
}

func NewIndexOutOfRangeError(field string, index, length int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrIndexOutOfRange,
		Details:    fmt.Sprintf("index %d out of range [0,%d)", index, length),
		Field:      field,
	}
}

func IsMalformedPayloadError(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}

func IsMissingRequiredFieldError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}

func IsInvalidHierarchyNameError(err error) bool {
	return errors.Is(err, ErrInvalidHierarchyName)
}

func IsIndexOutOfRangeError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}
