package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrDownload      = errors.New("download failed")
	ErrTranscription = errors.New("transcription failed")
	ErrTransport     = errors.New("chat transport error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// ServiceError carries the stage context attached by Wrap.
type ServiceError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

func (e *ServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Marker, e.Err}
	}
	return []error{e.Marker}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &ServiceError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// Details returns the outermost ServiceError in err's chain. Errors that were not
// produced by Wrap come back with only Message populated.
func Details(err error) ServiceError {
	if err == nil {
		return ServiceError{}
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return *svcErr
	}
	return ServiceError{Message: err.Error(), Err: err}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
