package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// File import & export errors
var (
	ErrUnreadableFile        = errors.New("unreadable file")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrMissingColumns        = errors.New("missing required columns")
	ErrMaxBodySizeExceeded   = errors.New("max body size exceeded")
	ErrUnsupportedExport     = errors.New("unsupported export format")
	ErrEmptyGenericTagInFile = errors.New("empty generic tag")
)

func NewUnreadableFileError(name string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnreadableFile,
		Details:    fmt.Sprintf("Error reading file %s", name),
		Cause:      cause,
		Field:      "file",
	}
}

func NewUnsupportedFileTypeError(name string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedFileType,
		Details:    fmt.Sprintf("%s: allowed extensions are %s", name, strings.Join(allowed, ", ")),
		Field:      "file",
	}
}

// NewMissingColumnsError names the missing columns and lists what the file has.
func NewMissingColumnsError(missing, available []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingColumns,
		Details: fmt.Sprintf("Missing required columns: %s. Available columns: %s",
			strings.Join(missing, ", "), strings.Join(available, ", ")),
		Field: "file",
	}
}

func NewEmptyGenericTagError(line int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrEmptyGenericTagInFile,
		Details:    fmt.Sprintf("row %d has no Generic Tag", line),
		Field:      "Generic Tag",
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body size exceeded maximum allowed size of %d bytes", maxSize),
		Field:      "body_size",
	}
}

func NewUnsupportedExportError(what string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnsupportedExport,
		Details:    fmt.Sprintf("%s: allowed values are %s", what, strings.Join(allowed, ", ")),
		Field:      "format",
	}
}

func IsUnreadableFileError(err error) bool {
	return errors.Is(err, ErrUnreadableFile)
}

func IsUnsupportedFileTypeError(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

func IsMissingColumnsError(err error) bool {
	return errors.Is(err, ErrMissingColumns)
}
